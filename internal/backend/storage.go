package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// File is the remote storage record for one uploaded object.
type File struct {
	ID       string `json:"$id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"sizeOriginal"`
}

// Buckets scopes file operations to one storage bucket.
type Buckets struct {
	client   *Client
	bucketID string
}

func (c *Client) Buckets(bucketID string) *Buckets {
	return &Buckets{client: c, bucketID: bucketID}
}

func (b *Buckets) filesPath() string {
	return "/storage/buckets/" + pathEscape(b.bucketID) + "/files"
}

// CreateFile uploads body under the given file ID and returns the record.
func (b *Buckets) CreateFile(ctx context.Context, session, fileID, filename string, body io.Reader) (*File, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("fileId", fileID); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("copy file body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.client.endpoint+b.filesPath(), &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	b.client.decorate(req, session)

	resp, err := b.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	var file File
	if err := decodeJSON(resp.Body, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (b *Buckets) GetFile(ctx context.Context, session, fileID string) (*File, error) {
	var file File
	if err := b.client.do(ctx, http.MethodGet, b.filesPath()+"/"+pathEscape(fileID), session, nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (b *Buckets) DeleteFile(ctx context.Context, session, fileID string) error {
	return b.client.do(ctx, http.MethodDelete, b.filesPath()+"/"+pathEscape(fileID), session, nil, nil)
}

// FilePreviewURL constructs the public preview URL for a stored file.
func (b *Buckets) FilePreviewURL(fileID string) string {
	return fmt.Sprintf("%s%s/%s/preview?project=%s",
		b.client.endpoint, b.filesPath(), url.PathEscape(fileID), url.QueryEscape(b.client.projectID))
}

// FileViewURL constructs the raw view URL for a stored file.
func (b *Buckets) FileViewURL(fileID string) string {
	return fmt.Sprintf("%s%s/%s/view?project=%s",
		b.client.endpoint, b.filesPath(), url.PathEscape(fileID), url.QueryEscape(b.client.projectID))
}
