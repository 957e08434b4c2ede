package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/inkwellapp/inkwell/internal/events"
	"github.com/inkwellapp/inkwell/internal/storage"
)

type mockRepo struct {
	create func(ctx context.Context, session string, fields PostFields) (*Post, error)
	get    func(ctx context.Context, session, slug string) (*Post, error)
	update func(ctx context.Context, session, slug string, update PostUpdate) (*Post, error)
	delete func(ctx context.Context, session, slug string) error
	list   func(ctx context.Context, session string, params ListParams) (*ListResult, error)
}

func (m *mockRepo) Create(ctx context.Context, session string, fields PostFields) (*Post, error) {
	if m.create != nil {
		return m.create(ctx, session, fields)
	}
	return nil, errors.New("unexpected Create call")
}

func (m *mockRepo) Get(ctx context.Context, session, slug string) (*Post, error) {
	if m.get != nil {
		return m.get(ctx, session, slug)
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(ctx context.Context, session, slug string, update PostUpdate) (*Post, error) {
	if m.update != nil {
		return m.update(ctx, session, slug, update)
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Delete(ctx context.Context, session, slug string) error {
	if m.delete != nil {
		return m.delete(ctx, session, slug)
	}
	return nil
}

func (m *mockRepo) List(ctx context.Context, session string, params ListParams) (*ListResult, error) {
	if m.list != nil {
		return m.list(ctx, session, params)
	}
	return &ListResult{Posts: []Post{}}, nil
}

type mockImages struct {
	upload func(ctx context.Context, session, filename string, body io.Reader, contentType string) (string, error)
	delete func(ctx context.Context, session, id string) error
	exists func(ctx context.Context, session, id string) (bool, error)
}

func (m *mockImages) Upload(ctx context.Context, session, filename string, body io.Reader, contentType string) (string, error) {
	if m.upload != nil {
		return m.upload(ctx, session, filename, body, contentType)
	}
	return "file-1", nil
}

func (m *mockImages) Delete(ctx context.Context, session, id string) error {
	if m.delete != nil {
		return m.delete(ctx, session, id)
	}
	return nil
}

func (m *mockImages) Exists(ctx context.Context, session, id string) (bool, error) {
	if m.exists != nil {
		return m.exists(ctx, session, id)
	}
	return false, nil
}

func (m *mockImages) PreviewURL(id string) string { return "/files/" + id + "/preview" }

type recordingPublisher struct {
	published []events.PostPublished
	contacts  []events.ContactReceived
	err       error
}

func (p *recordingPublisher) PublishPostPublished(_ context.Context, e events.PostPublished) error {
	p.published = append(p.published, e)
	return p.err
}

func (p *recordingPublisher) PublishContactReceived(_ context.Context, e events.ContactReceived) error {
	p.contacts = append(p.contacts, e)
	return p.err
}

func newTestService(repo *mockRepo, images *mockImages, pub *recordingPublisher) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, images, pub, logger)
}

func TestService_CreatePost(t *testing.T) {
	t.Run("passes fields through", func(t *testing.T) {
		repo := &mockRepo{
			create: func(_ context.Context, session string, fields PostFields) (*Post, error) {
				if session != "tok" {
					t.Errorf("session %q", session)
				}
				if fields.Slug != "hello" || fields.FeaturedImageID != "file-9" {
					t.Errorf("got fields %+v", fields)
				}
				return &Post{Slug: fields.Slug, Title: fields.Title, Status: fields.Status}, nil
			},
		}
		svc := newTestService(repo, &mockImages{}, &recordingPublisher{})

		post, err := svc.CreatePost(context.Background(), "tok", PostFields{
			Slug: "hello", Title: "Hello", Status: Draft, FeaturedImageID: "file-9",
		})
		if err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		if post.Slug != "hello" {
			t.Errorf("got %+v", post)
		}
	})

	t.Run("duplicate slug fails without overwrite", func(t *testing.T) {
		repo := &mockRepo{
			create: func(context.Context, string, PostFields) (*Post, error) {
				return nil, ErrSlugExists
			},
		}
		svc := newTestService(repo, &mockImages{}, &recordingPublisher{})
		_, err := svc.CreatePost(context.Background(), "tok", PostFields{Slug: "taken"})
		if !errors.Is(err, ErrSlugExists) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("publishing immediately emits an event", func(t *testing.T) {
		repo := &mockRepo{
			create: func(_ context.Context, _ string, fields PostFields) (*Post, error) {
				return &Post{Slug: fields.Slug, Title: fields.Title, Status: Published}, nil
			},
		}
		pub := &recordingPublisher{}
		svc := newTestService(repo, &mockImages{}, pub)

		if _, err := svc.CreatePost(context.Background(), "tok", PostFields{Slug: "live", Title: "Live", Status: Published}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		if len(pub.published) != 1 || pub.published[0].Payload.Slug != "live" {
			t.Errorf("published events %+v", pub.published)
		}
	})

	t.Run("draft emits nothing", func(t *testing.T) {
		repo := &mockRepo{
			create: func(_ context.Context, _ string, fields PostFields) (*Post, error) {
				return &Post{Slug: fields.Slug, Status: Draft}, nil
			},
		}
		pub := &recordingPublisher{}
		svc := newTestService(repo, &mockImages{}, pub)

		if _, err := svc.CreatePost(context.Background(), "tok", PostFields{Slug: "wip", Status: Draft}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		if len(pub.published) != 0 {
			t.Errorf("unexpected events %+v", pub.published)
		}
	})
}

func TestService_UpdatePost(t *testing.T) {
	t.Run("forwards only set fields", func(t *testing.T) {
		title := "New Title"
		repo := &mockRepo{
			update: func(_ context.Context, _, slug string, update PostUpdate) (*Post, error) {
				if slug != "old" {
					t.Errorf("slug %q", slug)
				}
				if update.Title == nil || *update.Title != "New Title" {
					t.Errorf("title not forwarded: %+v", update)
				}
				if update.Content != nil || update.Excerpt != nil || update.Category != nil ||
					update.Tags != nil || update.Status != nil || update.FeaturedImageID != nil {
					t.Errorf("unset fields were forwarded: %+v", update)
				}
				return &Post{Slug: slug, Title: *update.Title}, nil
			},
		}
		svc := newTestService(repo, &mockImages{}, &recordingPublisher{})

		post, err := svc.UpdatePost(context.Background(), "tok", "old", PostUpdate{Title: &title})
		if err != nil {
			t.Fatalf("UpdatePost: %v", err)
		}
		if post.Title != "New Title" {
			t.Errorf("got %+v", post)
		}
	})

	t.Run("empty update degrades to a read", func(t *testing.T) {
		repo := &mockRepo{
			get: func(_ context.Context, _, slug string) (*Post, error) {
				return &Post{Slug: slug, Title: "Unchanged"}, nil
			},
			update: func(context.Context, string, string, PostUpdate) (*Post, error) {
				t.Error("Update should not be called for an empty patch")
				return nil, errors.New("no")
			},
		}
		svc := newTestService(repo, &mockImages{}, &recordingPublisher{})

		post, err := svc.UpdatePost(context.Background(), "tok", "a", PostUpdate{})
		if err != nil {
			t.Fatalf("UpdatePost: %v", err)
		}
		if post.Title != "Unchanged" {
			t.Errorf("got %+v", post)
		}
	})

	t.Run("draft to published emits an event", func(t *testing.T) {
		status := Published
		repo := &mockRepo{
			get: func(_ context.Context, _, slug string) (*Post, error) {
				return &Post{Slug: slug, Title: "Hi", Status: Draft}, nil
			},
			update: func(_ context.Context, _, slug string, update PostUpdate) (*Post, error) {
				return &Post{Slug: slug, Title: "Hi", Status: *update.Status}, nil
			},
		}
		pub := &recordingPublisher{}
		svc := newTestService(repo, &mockImages{}, pub)

		if _, err := svc.UpdatePost(context.Background(), "tok", "hi", PostUpdate{Status: &status}); err != nil {
			t.Fatalf("UpdatePost: %v", err)
		}
		if len(pub.published) != 1 || pub.published[0].Payload.Slug != "hi" {
			t.Errorf("published events %+v", pub.published)
		}
	})

	t.Run("republishing an already published post emits nothing", func(t *testing.T) {
		status := Published
		repo := &mockRepo{
			get: func(_ context.Context, _, slug string) (*Post, error) {
				return &Post{Slug: slug, Status: Published}, nil
			},
			update: func(_ context.Context, _, slug string, update PostUpdate) (*Post, error) {
				return &Post{Slug: slug, Status: *update.Status}, nil
			},
		}
		pub := &recordingPublisher{}
		svc := newTestService(repo, &mockImages{}, pub)

		if _, err := svc.UpdatePost(context.Background(), "tok", "live", PostUpdate{Status: &status}); err != nil {
			t.Fatalf("UpdatePost: %v", err)
		}
		if len(pub.published) != 0 {
			t.Errorf("unexpected events %+v", pub.published)
		}
	})
}

func TestService_DeletePost(t *testing.T) {
	t.Run("deletes document then image", func(t *testing.T) {
		var deletedImage string
		repo := &mockRepo{
			get: func(_ context.Context, _, slug string) (*Post, error) {
				return &Post{Slug: slug, FeaturedImageID: "file-3"}, nil
			},
			delete: func(context.Context, string, string) error { return nil },
		}
		images := &mockImages{
			delete: func(_ context.Context, _, id string) error {
				deletedImage = id
				return nil
			},
		}
		svc := newTestService(repo, images, &recordingPublisher{})

		if err := svc.DeletePost(context.Background(), "tok", "a"); err != nil {
			t.Fatalf("DeletePost: %v", err)
		}
		if deletedImage != "file-3" {
			t.Errorf("deleted image %q", deletedImage)
		}
	})

	t.Run("image deletion failure does not fail the delete", func(t *testing.T) {
		repo := &mockRepo{
			get: func(_ context.Context, _, slug string) (*Post, error) {
				return &Post{Slug: slug, FeaturedImageID: "file-3"}, nil
			},
			delete: func(context.Context, string, string) error { return nil },
		}
		images := &mockImages{
			delete: func(context.Context, string, string) error { return errors.New("bucket unreachable") },
		}
		svc := newTestService(repo, images, &recordingPublisher{})

		if err := svc.DeletePost(context.Background(), "tok", "a"); err != nil {
			t.Errorf("DeletePost: %v", err)
		}
	})

	t.Run("document deletion failure blocks image deletion", func(t *testing.T) {
		repo := &mockRepo{
			get: func(_ context.Context, _, slug string) (*Post, error) {
				return &Post{Slug: slug, FeaturedImageID: "file-3"}, nil
			},
			delete: func(context.Context, string, string) error { return ErrUnauthorized },
		}
		images := &mockImages{
			delete: func(context.Context, string, string) error {
				t.Error("image should not be deleted when the document survives")
				return nil
			},
		}
		svc := newTestService(repo, images, &recordingPublisher{})

		if err := svc.DeletePost(context.Background(), "tok", "a"); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("missing image is not an error", func(t *testing.T) {
		repo := &mockRepo{
			get: func(_ context.Context, _, slug string) (*Post, error) {
				return &Post{Slug: slug, FeaturedImageID: "gone"}, nil
			},
			delete: func(context.Context, string, string) error { return nil },
		}
		images := &mockImages{
			delete: func(context.Context, string, string) error { return storage.ErrNotFound },
		}
		svc := newTestService(repo, images, &recordingPublisher{})

		if err := svc.DeletePost(context.Background(), "tok", "a"); err != nil {
			t.Errorf("DeletePost: %v", err)
		}
	})
}

func TestService_ListPublished(t *testing.T) {
	t.Run("forces published status and caps the limit", func(t *testing.T) {
		repo := &mockRepo{
			list: func(_ context.Context, _ string, params ListParams) (*ListResult, error) {
				if params.Status != Published {
					t.Errorf("status %q", params.Status)
				}
				if params.Limit != 100 {
					t.Errorf("limit %d", params.Limit)
				}
				return &ListResult{Posts: []Post{{Slug: "a"}}, Total: 1}, nil
			},
		}
		svc := newTestService(repo, &mockImages{}, &recordingPublisher{})

		result, err := svc.ListPublished(context.Background(), "tok", ListParams{Limit: 5000})
		if err != nil {
			t.Fatalf("ListPublished: %v", err)
		}
		if result.Total != 1 {
			t.Errorf("got %+v", result)
		}
	})

	t.Run("guest with no access sees an empty list", func(t *testing.T) {
		repo := &mockRepo{
			list: func(context.Context, string, ListParams) (*ListResult, error) {
				return nil, ErrUnauthorized
			},
		}
		svc := newTestService(repo, &mockImages{}, &recordingPublisher{})

		result, err := svc.ListPublished(context.Background(), "", ListParams{})
		if err != nil {
			t.Fatalf("ListPublished: %v", err)
		}
		if len(result.Posts) != 0 || result.Total != 0 {
			t.Errorf("got %+v", result)
		}
	})

	t.Run("other errors propagate", func(t *testing.T) {
		repo := &mockRepo{
			list: func(context.Context, string, ListParams) (*ListResult, error) {
				return nil, errors.New("remote down")
			},
		}
		svc := newTestService(repo, &mockImages{}, &recordingPublisher{})

		if _, err := svc.ListPublished(context.Background(), "tok", ListParams{}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestService_ListDrafts(t *testing.T) {
	repo := &mockRepo{
		list: func(_ context.Context, _ string, params ListParams) (*ListResult, error) {
			if params.Status != Draft || params.AuthorID != "u1" {
				t.Errorf("got params %+v", params)
			}
			return &ListResult{Posts: []Post{{Slug: "wip"}}, Total: 1}, nil
		},
	}
	svc := newTestService(repo, &mockImages{}, &recordingPublisher{})

	result, err := svc.ListDrafts(context.Background(), "tok", "u1", ListParams{})
	if err != nil {
		t.Fatalf("ListDrafts: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("got %+v", result)
	}
}
