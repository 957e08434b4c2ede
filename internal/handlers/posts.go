package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellapp/inkwell/internal/content"
	"github.com/inkwellapp/inkwell/internal/forms"
	"github.com/inkwellapp/inkwell/internal/middleware"
	"github.com/inkwellapp/inkwell/internal/storage"
)

const maxUploadBytes = 10 << 20

type PostsHandler struct {
	svc    *content.Service
	images storage.Storage
	logger *slog.Logger
}

func NewPostsHandler(svc *content.Service, images storage.Storage, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		images: images,
		logger: logger,
	}
}

// List serves the published listing. Search, category, and sort arrive as
// query parameters so filter state lives in the URL and stays shareable.
func (h *PostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.GetSessionToken(r.Context())
		result, err := h.svc.ListPublished(r.Context(), token, content.ListParams{})
		if err != nil {
			respondError(w, h.logger, err)
			return
		}

		q := r.URL.Query()
		key := content.ParseSortKey(q.Get("sort"))
		posts := content.FilterAndSort(result.Posts, q.Get("search"), q.Get("category"), key)
		writeJSON(w, http.StatusOK, content.ListResult{Posts: posts, Total: len(posts)})
	}
}

func (h *PostsHandler) GetBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		token := middleware.GetSessionToken(r.Context())

		post, err := h.svc.GetPost(r.Context(), token, slug)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

// Create accepts either a JSON body with a pre-uploaded featured_image_id
// or a multipart form carrying the image inline, in which case the upload
// happens first and the post references its id.
func (h *PostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.GetSessionToken(r.Context())
		user := middleware.GetSession(r.Context()).User

		var input forms.PostInput
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			imageID, ok := h.decodeMultipartPost(w, r, token, &input)
			if !ok {
				return
			}
			input.FeaturedImageID = imageID
		} else if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}

		if errs := forms.ValidatePost(input); errs != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", errs)
			return
		}
		slug := input.Slug
		if slug == "" {
			slug = forms.DeriveSlug(input.Title)
		}

		post, err := h.svc.CreatePost(r.Context(), token, content.PostFields{
			Slug:            slug,
			Title:           input.Title,
			Content:         input.Content,
			Excerpt:         input.Excerpt,
			Category:        input.Category,
			Tags:            forms.SplitTags(input.Tags),
			Status:          content.Status(input.Status),
			FeaturedImageID: input.FeaturedImageID,
			AuthorID:        user.ID,
		})
		if err != nil {
			respondError(w, h.logger, err)
			return
		}

		w.Header().Set("Location", "/posts/"+post.Slug)
		writeJSON(w, http.StatusCreated, post)
	}
}

func (h *PostsHandler) decodeMultipartPost(w http.ResponseWriter, r *http.Request, token string, input *forms.PostInput) (string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form", nil)
		return "", false
	}
	input.Title = r.FormValue("title")
	input.Slug = r.FormValue("slug")
	input.Content = r.FormValue("content")
	input.Excerpt = r.FormValue("excerpt")
	input.Category = r.FormValue("category")
	input.Tags = r.FormValue("tags")
	input.Status = r.FormValue("status")

	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return r.FormValue("featured_image_id"), true
		}
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid image upload", nil)
		return "", false
	}
	defer file.Close()

	id, err := h.images.Upload(r.Context(), token, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(w, h.logger, err)
		return "", false
	}
	return id, true
}

// Update applies a partial edit. Fields absent from the body are left
// untouched remotely; the slug never changes.
func (h *PostsHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		token := middleware.GetSessionToken(r.Context())

		var patch forms.PostPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		if errs := forms.ValidatePostPatch(patch); errs != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", errs)
			return
		}

		update := content.PostUpdate{
			Title:           patch.Title,
			Content:         patch.Content,
			Excerpt:         patch.Excerpt,
			Category:        patch.Category,
			FeaturedImageID: patch.FeaturedImageID,
		}
		if patch.Tags != nil {
			tags := forms.SplitTags(*patch.Tags)
			update.Tags = &tags
		}
		if patch.Status != nil {
			status := content.Status(*patch.Status)
			update.Status = &status
		}

		post, err := h.svc.UpdatePost(r.Context(), token, slug, update)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		token := middleware.GetSessionToken(r.Context())

		if err := h.svc.DeletePost(r.Context(), token, slug); err != nil {
			respondError(w, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Drafts lists the caller's own unpublished posts.
func (h *PostsHandler) Drafts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.GetSessionToken(r.Context())
		user := middleware.GetSession(r.Context()).User

		result, err := h.svc.ListDrafts(r.Context(), token, user.ID, content.ListParams{
			Sort: content.ParseSortKey(r.URL.Query().Get("sort")),
		})
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
