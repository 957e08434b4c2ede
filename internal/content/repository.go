package content

import "context"

// Repository is the content store port. The primary implementation forwards
// to the remote document API; a Postgres implementation exists for
// self-hosted deployments.
type Repository interface {
	Create(ctx context.Context, session string, fields PostFields) (*Post, error)
	Get(ctx context.Context, session, slug string) (*Post, error)
	Update(ctx context.Context, session, slug string, update PostUpdate) (*Post, error)
	Delete(ctx context.Context, session, slug string) error
	List(ctx context.Context, session string, params ListParams) (*ListResult, error)
}
