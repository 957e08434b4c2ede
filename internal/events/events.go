package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePostPublished   = "post.published"
	TypeContactReceived = "contact.received"
)

type PostPublishedPayload struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Category string `json:"category"`
	AuthorID string `json:"author_id"`
}

type PostPublished struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   PostPublishedPayload `json:"payload"`
}

func NewPostPublished(slug, title, category, authorID string) PostPublished {
	return PostPublished{
		ID:        uuid.NewString(),
		Type:      TypePostPublished,
		Timestamp: time.Now().UTC(),
		Payload: PostPublishedPayload{
			Slug:     slug,
			Title:    title,
			Category: category,
			AuthorID: authorID,
		},
	}
}

type ContactReceivedPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactReceived struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   ContactReceivedPayload `json:"payload"`
}

func NewContactReceived(name, email, subject, message string) ContactReceived {
	return ContactReceived{
		ID:        uuid.NewString(),
		Type:      TypeContactReceived,
		Timestamp: time.Now().UTC(),
		Payload: ContactReceivedPayload{
			Name:    name,
			Email:   email,
			Subject: subject,
			Message: message,
		},
	}
}
