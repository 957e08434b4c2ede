package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell/internal/events"
	"github.com/inkwellapp/inkwell/internal/storage"
)

const maxListLimit = 100

// Service wraps the repository with the rules that do not belong to any
// single store: guest-safe listing, image cleanup on delete, and publish
// events.
type Service struct {
	repo      Repository
	images    storage.Storage
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, images storage.Storage, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		images:    images,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) CreatePost(ctx context.Context, session string, fields PostFields) (*Post, error) {
	post, err := s.repo.Create(ctx, session, fields)
	if err != nil {
		return nil, err
	}
	if post.Status == Published {
		s.emitPublished(ctx, post)
	}
	return post, nil
}

func (s *Service) GetPost(ctx context.Context, session, slug string) (*Post, error) {
	return s.repo.Get(ctx, session, slug)
}

func (s *Service) UpdatePost(ctx context.Context, session, slug string, update PostUpdate) (*Post, error) {
	if update.IsZero() {
		return s.repo.Get(ctx, session, slug)
	}
	wasDraft := false
	if update.Status != nil && *update.Status == Published {
		if current, err := s.repo.Get(ctx, session, slug); err == nil {
			wasDraft = current.Status == Draft
		}
	}
	post, err := s.repo.Update(ctx, session, slug, update)
	if err != nil {
		return nil, err
	}
	if wasDraft && post.Status == Published {
		s.emitPublished(ctx, post)
	}
	return post, nil
}

// DeletePost removes the document and then its featured image. Image
// deletion is best effort: an orphaned file is acceptable, a dangling
// document reference is not.
func (s *Service) DeletePost(ctx context.Context, session, slug string) error {
	post, err := s.repo.Get(ctx, session, slug)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, session, slug); err != nil {
		return err
	}
	if post.FeaturedImageID != "" {
		if err := s.images.Delete(ctx, session, post.FeaturedImageID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to delete featured image",
				slog.String("slug", slug),
				slog.String("file_id", post.FeaturedImageID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// ListPublished returns published posts for any visitor. An unauthorized
// error from the store means the visitor simply has nothing to see, so it
// degrades to an empty listing instead of failing the page.
func (s *Service) ListPublished(ctx context.Context, session string, params ListParams) (*ListResult, error) {
	params.Status = Published
	params.Limit = clampLimit(params.Limit)
	result, err := s.repo.List(ctx, session, params)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return &ListResult{Posts: []Post{}}, nil
		}
		return nil, fmt.Errorf("list published: %w", err)
	}
	return result, nil
}

// ListDrafts returns the author's unpublished posts.
func (s *Service) ListDrafts(ctx context.Context, session, authorID string, params ListParams) (*ListResult, error) {
	params.Status = Draft
	params.AuthorID = authorID
	params.Limit = clampLimit(params.Limit)
	return s.repo.List(ctx, session, params)
}

func (s *Service) emitPublished(ctx context.Context, post *Post) {
	event := events.NewPostPublished(post.Slug, post.Title, post.Category, post.AuthorID)
	if err := s.publisher.PublishPostPublished(ctx, event); err != nil {
		s.logger.Error("failed to publish event",
			slog.String("type", event.Type),
			slog.String("slug", post.Slug),
			slog.String("error", err.Error()))
	}
}

func clampLimit(limit int) int {
	if limit < 1 || limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
