package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/inkwellapp/inkwell/internal/config"
	"github.com/inkwellapp/inkwell/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := config.Load()
	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required")
		os.Exit(1)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(events.ExchangeName, "topic", true, false, false, false, nil); err != nil {
		logger.Error("failed to declare exchange", "error", err)
		os.Exit(1)
	}

	published, err := bindQueue(ch, events.QueuePostPublished, events.RoutingKeyPostPublished, "notifier-published")
	if err != nil {
		logger.Error("failed to set up post queue", "error", err)
		os.Exit(1)
	}
	contacts, err := bindQueue(ch, events.QueueContactReceived, events.RoutingKeyContactReceived, "notifier-contact")
	if err != nil {
		logger.Error("failed to set up contact queue", "error", err)
		os.Exit(1)
	}

	logger.Info("notifier worker started",
		"queues", []string{events.QueuePostPublished, events.QueueContactReceived})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			logger.Info("worker shutting down")
			return
		case d, ok := <-published:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			handlePostPublished(logger, d)
		case d, ok := <-contacts:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			handleContactReceived(logger, d)
		}
	}
}

func bindQueue(ch *amqp.Channel, queue, routingKey, consumer string) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	if err := ch.QueueBind(q.Name, routingKey, events.ExchangeName, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(q.Name, consumer, false, false, false, false, nil)
}

func handlePostPublished(logger *slog.Logger, d amqp.Delivery) {
	var e events.PostPublished
	if err := json.Unmarshal(d.Body, &e); err != nil {
		logger.Error("invalid event body", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if e.Type != events.TypePostPublished {
		logger.Debug("ignoring event type", "type", e.Type)
		_ = d.Ack(false)
		return
	}
	logger.Info("post published",
		"slug", e.Payload.Slug,
		"title", e.Payload.Title,
		"category", e.Payload.Category,
	)

	if err := d.Ack(false); err != nil {
		logger.Error("failed to ack", "error", err)
	}
}

func handleContactReceived(logger *slog.Logger, d amqp.Delivery) {
	var e events.ContactReceived
	if err := json.Unmarshal(d.Body, &e); err != nil {
		logger.Error("invalid event body", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if e.Type != events.TypeContactReceived {
		logger.Debug("ignoring event type", "type", e.Type)
		_ = d.Ack(false)
		return
	}
	logger.Info("contact message received",
		"from", e.Payload.Email,
		"subject", e.Payload.Subject,
	)

	if err := d.Ack(false); err != nil {
		logger.Error("failed to ack", "error", err)
	}
}
