package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/inkwellapp/inkwell/internal/backend"
	"github.com/inkwellapp/inkwell/internal/config"
	"github.com/inkwellapp/inkwell/internal/content"
	"github.com/inkwellapp/inkwell/internal/events"
	"github.com/inkwellapp/inkwell/internal/handlers"
	"github.com/inkwellapp/inkwell/internal/middleware"
	"github.com/inkwellapp/inkwell/internal/session"
	"github.com/inkwellapp/inkwell/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := config.Load()
	if !cfg.BackendConfigured() {
		logger.Warn("backend not configured, account and content APIs will be unavailable")
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendProjectID)

	var db *sql.DB
	var repo content.Repository
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		repo = content.NewPostgresRepository(db)
		logger.Info("content store: postgres")
	} else {
		repo = content.NewBackendRepository(client.Databases(cfg.BackendDatabaseID, cfg.BackendCollectionID))
		logger.Info("content store: backend documents")
	}

	images, err := buildStorage(cfg, client, logger)
	if err != nil {
		logger.Error("failed to configure storage", "error", err)
		os.Exit(1)
	}

	var store session.Store
	if cfg.RedisAddr != "" {
		store = session.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		logger.Info("session cache: redis", "addr", cfg.RedisAddr)
	} else {
		store = session.NewMemoryStore()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer rabbit.Close()
		publisher = rabbit
	}

	manager := session.NewManager(client, store, logger)
	unsubscribe := manager.Subscribe(func(e session.Event) {
		logger.Info("session transition", "authenticated", e.Session.Authenticated)
	})
	defer unsubscribe()

	svc := content.NewService(repo, images, publisher, logger)

	postsHandler := handlers.NewPostsHandler(svc, images, logger)
	authHandler := handlers.NewAuthHandler(manager, logger, cfg.SecureCookies)
	filesHandler := handlers.NewFilesHandler(images, logger)
	contactHandler := handlers.NewContactHandler(publisher, logger)
	pagesHandler := handlers.NewPagesHandler(svc, cfg, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.WithSession(manager))

	r.Get("/", pagesHandler.Home())
	r.Get("/about", pagesHandler.About())
	r.Get("/editor/config", pagesHandler.EditorConfig())
	r.Get("/healthz", handlers.Health(&handlers.HealthDeps{
		DB:          db,
		Storage:     images,
		RabbitMQURL: cfg.RabbitMQURL,
	}))
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/contact", contactHandler.Submit())

	r.Route("/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/register", authHandler.Register())
		r.Post("/login", authHandler.Login())
		r.Post("/logout", authHandler.Logout())
		r.Get("/me", authHandler.Me())
	})

	r.Get("/posts", postsHandler.List())
	r.Get("/posts/{slug}", postsHandler.GetBySlug())
	r.Get("/files/{id}/preview", filesHandler.Preview())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.APIKey(cfg.AdminAPIKey))
		r.Get("/drafts", postsHandler.Drafts())
		r.Post("/posts", postsHandler.Create())
		r.Patch("/posts/{slug}", postsHandler.Update())
		r.Delete("/posts/{slug}", postsHandler.Delete())
		r.Post("/files", filesHandler.Upload())
	})

	r.NotFound(handlers.NotFound())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func buildStorage(cfg *config.Config, client *backend.Client, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Bucket == "" {
		logger.Info("image storage: backend bucket")
		return storage.NewBucketStorage(client.Buckets(cfg.BackendBucketID)), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.CDNBaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.S3Bucket + ".s3." + cfg.AWSRegion + ".amazonaws.com"
	}
	logger.Info("image storage: s3", "bucket", cfg.S3Bucket)
	return storage.NewS3Storage(s3Client, cfg.S3Bucket, baseURL), nil
}
