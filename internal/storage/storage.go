package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("file not found")

// Storage holds uploaded post images. Upload returns an opaque file id;
// posts reference images only by that id, never by URL.
type Storage interface {
	Upload(ctx context.Context, session, filename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, session, id string) error
	Exists(ctx context.Context, session, id string) (bool, error)
	PreviewURL(id string) string
}
