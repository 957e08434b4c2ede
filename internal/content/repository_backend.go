package content

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwellapp/inkwell/internal/backend"
)

var _ Repository = (*backendRepository)(nil)

// backendRepository stores posts as documents in the hosted backend, keyed
// by slug. The backend enforces identifier uniqueness; this layer only
// translates its typed errors into the package sentinels.
type backendRepository struct {
	db *backend.Databases
}

func NewBackendRepository(db *backend.Databases) Repository {
	return &backendRepository{db: db}
}

func (r *backendRepository) Create(ctx context.Context, session string, fields PostFields) (*Post, error) {
	data := map[string]any{
		"title":         fields.Title,
		"content":       fields.Content,
		"excerpt":       fields.Excerpt,
		"category":      fields.Category,
		"tags":          fields.Tags,
		"status":        string(fields.Status),
		"featuredImage": fields.FeaturedImageID,
		"authorId":      fields.AuthorID,
	}
	doc, err := r.db.CreateDocument(ctx, session, fields.Slug, data)
	if err != nil {
		return nil, translate(err)
	}
	return postFromDocument(doc), nil
}

func (r *backendRepository) Get(ctx context.Context, session, slug string) (*Post, error) {
	doc, err := r.db.GetDocument(ctx, session, slug)
	if err != nil {
		return nil, translate(err)
	}
	return postFromDocument(doc), nil
}

func (r *backendRepository) Update(ctx context.Context, session, slug string, update PostUpdate) (*Post, error) {
	// Only fields the caller set travel over the wire; everything else is
	// left untouched remotely.
	data := make(map[string]any)
	if update.Title != nil {
		data["title"] = *update.Title
	}
	if update.Content != nil {
		data["content"] = *update.Content
	}
	if update.Excerpt != nil {
		data["excerpt"] = *update.Excerpt
	}
	if update.Category != nil {
		data["category"] = *update.Category
	}
	if update.Tags != nil {
		data["tags"] = *update.Tags
	}
	if update.Status != nil {
		data["status"] = string(*update.Status)
	}
	if update.FeaturedImageID != nil {
		data["featuredImage"] = *update.FeaturedImageID
	}
	doc, err := r.db.UpdateDocument(ctx, session, slug, data)
	if err != nil {
		return nil, translate(err)
	}
	return postFromDocument(doc), nil
}

func (r *backendRepository) Delete(ctx context.Context, session, slug string) error {
	if err := r.db.DeleteDocument(ctx, session, slug); err != nil {
		return translate(err)
	}
	return nil
}

func (r *backendRepository) List(ctx context.Context, session string, params ListParams) (*ListResult, error) {
	queries := make([]backend.Query, 0, 4)
	if params.Status != "" {
		queries = append(queries, backend.Equal("status", string(params.Status)))
	}
	if params.Category != "" {
		queries = append(queries, backend.Equal("category", params.Category))
	}
	if params.AuthorID != "" {
		queries = append(queries, backend.Equal("authorId", params.AuthorID))
	}
	switch params.Sort {
	case SortOldest:
		queries = append(queries, backend.OrderAsc("$createdAt"))
	case SortTitleAsc:
		queries = append(queries, backend.OrderAsc("title"))
	case SortTitleDesc:
		queries = append(queries, backend.OrderDesc("title"))
	default:
		queries = append(queries, backend.OrderDesc("$createdAt"))
	}
	if params.Limit > 0 {
		queries = append(queries, backend.Limit(params.Limit))
	}

	list, err := r.db.ListDocuments(ctx, session, queries)
	if err != nil {
		return nil, translate(err)
	}
	posts := make([]Post, 0, len(list.Documents))
	for i := range list.Documents {
		posts = append(posts, *postFromDocument(&list.Documents[i]))
	}
	return &ListResult{Posts: posts, Total: list.Total}, nil
}

func translate(err error) error {
	switch backend.KindOf(err) {
	case backend.KindNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case backend.KindAlreadyExists:
		return fmt.Errorf("%w: %w", ErrSlugExists, err)
	case backend.KindUnauthorized, backend.KindMissingScope:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}

func postFromDocument(doc *backend.Document) *Post {
	p := &Post{
		Slug:      doc.ID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	p.Title, _ = doc.Data["title"].(string)
	p.Content, _ = doc.Data["content"].(string)
	p.Excerpt, _ = doc.Data["excerpt"].(string)
	p.Category, _ = doc.Data["category"].(string)
	p.FeaturedImageID, _ = doc.Data["featuredImage"].(string)
	p.AuthorID, _ = doc.Data["authorId"].(string)
	if status, ok := doc.Data["status"].(string); ok {
		p.Status = Status(status)
	}
	if raw, ok := doc.Data["tags"].([]any); ok {
		tags := make([]string, 0, len(raw))
		for _, t := range raw {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		p.Tags = tags
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return p
}
