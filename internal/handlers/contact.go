package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/inkwellapp/inkwell/internal/events"
	"github.com/inkwellapp/inkwell/internal/forms"
)

type ContactHandler struct {
	publisher events.Publisher
	logger    *slog.Logger
}

func NewContactHandler(publisher events.Publisher, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		publisher: publisher,
		logger:    logger,
	}
}

// Submit validates the contact form and hands it to the worker via the
// event bus. Delivery is asynchronous, hence 202.
func (h *ContactHandler) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input forms.ContactInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		if errs := forms.ValidateContact(input); errs != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", errs)
			return
		}

		event := events.NewContactReceived(input.Name, input.Email, input.Subject, input.Message)
		if err := h.publisher.PublishContactReceived(r.Context(), event); err != nil {
			h.logger.Error("publish contact event failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not submit message", nil)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "received"})
	}
}
