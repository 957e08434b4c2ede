package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Document is one stored record plus the metadata the backend maintains.
// The wire format carries application fields at the top level next to the
// $-prefixed metadata; decoding splits them apart into Data.
type Document struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      map[string]any
}

func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Data = make(map[string]any, len(raw))
	for key, value := range raw {
		switch key {
		case "$id":
			d.ID, _ = value.(string)
		case "$createdAt":
			d.CreatedAt = parseTimestamp(value)
		case "$updatedAt":
			d.UpdatedAt = parseTimestamp(value)
		default:
			if strings.HasPrefix(key, "$") {
				continue
			}
			d.Data[key] = value
		}
	}
	return nil
}

func parseTimestamp(value any) time.Time {
	s, ok := value.(string)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}

type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// Databases scopes document operations to one database/collection pair.
type Databases struct {
	client       *Client
	databaseID   string
	collectionID string
}

func (c *Client) Databases(databaseID, collectionID string) *Databases {
	return &Databases{client: c, databaseID: databaseID, collectionID: collectionID}
}

func (d *Databases) documentsPath() string {
	return "/databases/" + pathEscape(d.databaseID) + "/collections/" + pathEscape(d.collectionID) + "/documents"
}

// CreateDocument writes a new document keyed by the caller-chosen ID. A
// duplicate ID fails with KindAlreadyExists; the backend enforces this, the
// client never pre-checks.
func (d *Databases) CreateDocument(ctx context.Context, session, documentID string, data map[string]any) (*Document, error) {
	body := map[string]any{"documentId": documentID, "data": data}
	var doc Document
	if err := d.client.do(ctx, http.MethodPost, d.documentsPath(), session, body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Databases) GetDocument(ctx context.Context, session, documentID string) (*Document, error) {
	var doc Document
	path := d.documentsPath() + "/" + pathEscape(documentID)
	if err := d.client.do(ctx, http.MethodGet, path, session, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocument sends only the fields present in data; anything absent is
// left untouched remotely.
func (d *Databases) UpdateDocument(ctx context.Context, session, documentID string, data map[string]any) (*Document, error) {
	body := map[string]any{"data": data}
	var doc Document
	path := d.documentsPath() + "/" + pathEscape(documentID)
	if err := d.client.do(ctx, http.MethodPatch, path, session, body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Databases) DeleteDocument(ctx context.Context, session, documentID string) error {
	path := d.documentsPath() + "/" + pathEscape(documentID)
	return d.client.do(ctx, http.MethodDelete, path, session, nil, nil)
}

// ListDocuments passes the query expressions through unmodified.
func (d *Databases) ListDocuments(ctx context.Context, session string, queries []Query) (*DocumentList, error) {
	path := d.documentsPath()
	if encoded := encodeQueries(queries); encoded != "" {
		path += "?" + encoded
	}
	var list DocumentList
	if err := d.client.do(ctx, http.MethodGet, path, session, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
