package storage

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/inkwellapp/inkwell/internal/backend"
)

// BucketStorage stores images in the hosted backend's file bucket.
type BucketStorage struct {
	buckets *backend.Buckets
}

func NewBucketStorage(buckets *backend.Buckets) *BucketStorage {
	return &BucketStorage{buckets: buckets}
}

func (s *BucketStorage) Upload(ctx context.Context, session, filename string, body io.Reader, _ string) (string, error) {
	file, err := s.buckets.CreateFile(ctx, session, uuid.NewString(), filename, body)
	if err != nil {
		return "", err
	}
	return file.ID, nil
}

func (s *BucketStorage) Delete(ctx context.Context, session, id string) error {
	err := s.buckets.DeleteFile(ctx, session, id)
	if backend.IsKind(err, backend.KindNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *BucketStorage) Exists(ctx context.Context, session, id string) (bool, error) {
	_, err := s.buckets.GetFile(ctx, session, id)
	if err != nil {
		if backend.IsKind(err, backend.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *BucketStorage) PreviewURL(id string) string {
	return s.buckets.FilePreviewURL(id)
}

var _ Storage = (*BucketStorage)(nil)
