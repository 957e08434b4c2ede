package content

import (
	"time"
)

type Status string

const (
	Draft     Status = "draft"
	Published Status = "published"
)

// Post is one blog entry. The slug doubles as the remote document
// identifier and is immutable after creation.
type Post struct {
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Excerpt         string    `json:"excerpt"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	Status          Status    `json:"status"`
	FeaturedImageID string    `json:"featured_image_id,omitempty"`
	AuthorID        string    `json:"author_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PostFields is the full payload for creating a post. The featured image is
// pre-resolved: it has already been uploaded and only its opaque id travels
// here.
type PostFields struct {
	Slug            string
	Title           string
	Content         string
	Excerpt         string
	Category        string
	Tags            []string
	Status          Status
	FeaturedImageID string
	AuthorID        string
}

// PostUpdate carries a partial update. A nil field means "leave the remote
// value untouched"; callers must omit fields they do not intend to change.
type PostUpdate struct {
	Title           *string
	Content         *string
	Excerpt         *string
	Category        *string
	Tags            *[]string
	Status          *Status
	FeaturedImageID *string
}

// IsZero reports whether the update would touch nothing.
func (u PostUpdate) IsZero() bool {
	return u.Title == nil && u.Content == nil && u.Excerpt == nil &&
		u.Category == nil && u.Tags == nil && u.Status == nil && u.FeaturedImageID == nil
}

type ListParams struct {
	Status   Status
	Category string
	AuthorID string
	Sort     SortKey
	Limit    int
}

type ListResult struct {
	Posts []Post `json:"data"`
	Total int    `json:"total"`
}
