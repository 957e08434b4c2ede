package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkwellapp/inkwell/internal/backend"
	"github.com/inkwellapp/inkwell/internal/content"
)

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, map[string]any{
		"error": APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondError maps domain errors onto the envelope. Anything unmapped is
// logged and surfaced as a generic 500; remote errors carry a user-facing
// sentence chosen at the backend boundary.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
	case errors.Is(err, content.ErrSlugExists):
		writeError(w, http.StatusConflict, "CONFLICT", "a post with this slug already exists", nil)
	case errors.Is(err, content.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "you are not allowed to do that", nil)
	default:
		var remote *backend.Error
		if errors.As(err, &remote) {
			writeError(w, statusForKind(remote.Kind), codeForKind(remote.Kind), remote.UserMessage(), nil)
			return
		}
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func statusForKind(kind backend.Kind) int {
	switch kind {
	case backend.KindInvalidCredentials, backend.KindUnauthorized, backend.KindMissingScope:
		return http.StatusUnauthorized
	case backend.KindAlreadyExists, backend.KindSessionActive:
		return http.StatusConflict
	case backend.KindNotFound:
		return http.StatusNotFound
	case backend.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}

func codeForKind(kind backend.Kind) string {
	switch kind {
	case backend.KindInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case backend.KindAlreadyExists:
		return "ALREADY_EXISTS"
	case backend.KindNotFound:
		return "NOT_FOUND"
	case backend.KindUnauthorized, backend.KindMissingScope:
		return "UNAUTHORIZED"
	case backend.KindSessionActive:
		return "SESSION_ACTIVE"
	case backend.KindRateLimited:
		return "RATE_LIMITED"
	}
	return "BACKEND_ERROR"
}
