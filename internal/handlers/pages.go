package handlers

import (
	"log/slog"
	"net/http"

	"github.com/inkwellapp/inkwell/internal/config"
	"github.com/inkwellapp/inkwell/internal/content"
	"github.com/inkwellapp/inkwell/internal/middleware"
)

const recentPostCount = 5

type PagesHandler struct {
	svc    *content.Service
	cfg    *config.Config
	logger *slog.Logger
}

func NewPagesHandler(svc *content.Service, cfg *config.Config, logger *slog.Logger) *PagesHandler {
	return &PagesHandler{
		svc:    svc,
		cfg:    cfg,
		logger: logger,
	}
}

// Home shows the most recent published posts. For a guest with nothing to
// see this is an empty list, never an error page.
func (h *PagesHandler) Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.GetSessionToken(r.Context())
		result, err := h.svc.ListPublished(r.Context(), token, content.ListParams{
			Limit: recentPostCount,
		})
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"recent": result.Posts,
		})
	}
}

func (h *PagesHandler) About() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"name":        "Inkwell",
			"description": "A small publishing platform for essays and notes.",
			"contact":     "/contact",
		})
	}
}

// EditorConfig reports whether the editor surface is usable. When required
// settings are absent the client renders a setup prompt instead of the
// editor, so this degrades rather than errors.
func (h *PagesHandler) EditorConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		missing := make([]string, 0, 2)
		if !h.cfg.BackendConfigured() {
			missing = append(missing, "backend")
		}
		if !h.cfg.EditorConfigured() {
			missing = append(missing, "editor_api_key")
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"configured": len(missing) == 0,
			"missing":    missing,
			"editor_key": h.cfg.EditorAPIKey,
		})
	}
}

func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route", nil)
	}
}
