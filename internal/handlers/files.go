package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellapp/inkwell/internal/middleware"
	"github.com/inkwellapp/inkwell/internal/storage"
)

type FilesHandler struct {
	images storage.Storage
	logger *slog.Logger
}

func NewFilesHandler(images storage.Storage, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		images: images,
		logger: logger,
	}
}

// Upload stores a standalone image and returns its opaque id, for clients
// that upload before submitting the post form.
func (h *FilesHandler) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form", nil)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "file field is required", nil)
			return
		}
		defer file.Close()

		token := middleware.GetSessionToken(r.Context())
		id, err := h.images.Upload(r.Context(), token, header.Filename, file, header.Header.Get("Content-Type"))
		if err != nil {
			respondError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{
			"id":          id,
			"preview_url": h.images.PreviewURL(id),
		})
	}
}

// Preview redirects to wherever the image actually lives. Posts store only
// the id, so the store can move without rewriting documents.
func (h *FilesHandler) Preview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		http.Redirect(w, r, h.images.PreviewURL(id), http.StatusFound)
	}
}
