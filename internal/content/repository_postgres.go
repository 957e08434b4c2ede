package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

var _ Repository = (*postgresRepository)(nil)

// postgresRepository is the self-hosted alternative to the remote document
// API. The session argument is unused here: access control happens at the
// handler layer for local deployments.
type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const postColumns = "slug, title, content, excerpt, category, tags, status, featured_image_id, author_id, created_at, updated_at"

func (r *postgresRepository) Create(ctx context.Context, _ string, fields PostFields) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO posts (slug, title, content, excerpt, category, tags, status, featured_image_id, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns,
		fields.Slug, fields.Title, fields.Content, fields.Excerpt, fields.Category,
		pq.Array(fields.Tags), string(fields.Status), fields.FeaturedImageID, fields.AuthorID,
	)
	post, err := scanPost(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %s", ErrSlugExists, fields.Slug)
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

func (r *postgresRepository) Get(ctx context.Context, _ string, slug string) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("select post: %w", err)
	}
	return post, nil
}

func (r *postgresRepository) Update(ctx context.Context, _ string, slug string, update PostUpdate) (*Post, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Content != nil {
		add("content", *update.Content)
	}
	if update.Excerpt != nil {
		add("excerpt", *update.Excerpt)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Tags != nil {
		add("tags", pq.Array(*update.Tags))
	}
	if update.Status != nil {
		add("status", string(*update.Status))
	}
	if update.FeaturedImageID != nil {
		add("featured_image_id", *update.FeaturedImageID)
	}
	if len(sets) == 0 {
		return r.Get(ctx, "", slug)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, slug)

	query := `UPDATE posts SET ` + strings.Join(sets, ", ") +
		` WHERE slug = $` + strconv.Itoa(len(args)) + ` RETURNING ` + postColumns
	post, err := scanPost(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

func (r *postgresRepository) Delete(ctx context.Context, _ string, slug string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, _ string, params ListParams) (*ListResult, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if params.Category != "" {
		args = append(args, params.Category)
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	if params.AuthorID != "" {
		args = append(args, params.AuthorID)
		where = append(where, "author_id = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch params.Sort {
	case SortOldest:
		query += " ORDER BY created_at ASC"
	case SortTitleAsc:
		query += " ORDER BY title ASC"
	case SortTitleDesc:
		query += " ORDER BY title DESC"
	default:
		query += " ORDER BY created_at DESC"
	}
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return &ListResult{Posts: posts, Total: len(posts)}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	var status string
	if err := row.Scan(
		&p.Slug, &p.Title, &p.Content, &p.Excerpt, &p.Category,
		pq.Array(&p.Tags), &status, &p.FeaturedImageID, &p.AuthorID,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = Status(status)
	return &p, nil
}
