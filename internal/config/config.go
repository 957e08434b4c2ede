package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Hosted backend (account, document, and file storage APIs).
	BackendURL          string
	BackendProjectID    string
	BackendDatabaseID   string
	BackendCollectionID string
	BackendBucketID     string

	// Rich-text editor key handed to clients; empty means the editor
	// shows its setup prompt instead.
	EditorAPIKey string

	// Extra shared-secret guard on mutating routes for self-hosted
	// deployments. Empty disables the check.
	AdminAPIKey string

	SecureCookies bool

	// Optional self-hosted content store. When set it replaces the
	// remote document API.
	DatabaseURL string

	// Optional S3 storage for featured images. When set it replaces the
	// backend bucket.
	S3Bucket   string
	AWSRegion  string
	S3Endpoint string
	CDNBaseURL string

	RedisAddr   string
	RabbitMQURL string

	CORSOrigins []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Default().Warn("loading .env failed", "error", err)
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		BackendURL:          getEnv("BACKEND_URL", ""),
		BackendProjectID:    getEnv("BACKEND_PROJECT_ID", ""),
		BackendDatabaseID:   getEnv("BACKEND_DATABASE_ID", ""),
		BackendCollectionID: getEnv("BACKEND_COLLECTION_ID", ""),
		BackendBucketID:     getEnv("BACKEND_BUCKET_ID", ""),
		EditorAPIKey:        getEnv("EDITOR_API_KEY", ""),
		AdminAPIKey:         getEnv("ADMIN_API_KEY", ""),
		SecureCookies:       getEnv("SECURE_COOKIES", "false") == "true",
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		CDNBaseURL:          getEnv("CDN_BASE_URL", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		CORSOrigins:         splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// BackendConfigured reports whether the hosted backend is reachable at all.
// Individual features degrade on their own missing identifiers.
func (c *Config) BackendConfigured() bool {
	return c.BackendURL != "" && c.BackendProjectID != ""
}

func (c *Config) EditorConfigured() bool {
	return c.EditorAPIKey != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
