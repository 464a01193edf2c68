package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/blog-api/internal/model"
)

// BlogRepo encapsulates all database queries related to blogs.
type BlogRepo struct{ DB *sql.DB }

func NewBlogRepo(db *sql.DB) *BlogRepo { return &BlogRepo{DB: db} }

const blogColumns = `id, title, slug, content, author_id,
	views_count, likes_count, comments_count, status, created_at, updated_at`

func scanBlog(sc interface{ Scan(...any) error }) (model.Blog, error) {
	var b model.Blog
	err := sc.Scan(&b.ID, &b.Title, &b.Slug, &b.Content, &b.AuthorID,
		&b.ViewsCount, &b.LikesCount, &b.CommentsCount, &b.Status,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create inserts a new blog. On success the ID and timestamp fields of
// the passed struct are populated from the stored row. A slug
// collision maps to ErrDuplicate.
func (r *BlogRepo) Create(ctx context.Context, b *model.Blog) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO blogs (title, slug, content, author_id, status) VALUES (?,?,?,?,?)",
		b.Title, b.Slug, b.Content, b.AuthorID, b.Status)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: create blog: %v", ErrStoreUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: create blog: %v", ErrStoreUnavailable, err)
	}
	b.ID = uint64(id)

	// Follow-up select populates DB-generated timestamps and counters.
	stored, err := scanBlog(r.DB.QueryRowContext(ctx,
		"SELECT "+blogColumns+" FROM blogs WHERE id=?", b.ID))
	if err != nil {
		return fmt.Errorf("%w: create blog: %v", ErrStoreUnavailable, err)
	}
	*b = stored
	return nil
}

// GetByID fetches a blog regardless of status.
func (r *BlogRepo) GetByID(ctx context.Context, id uint64) (model.Blog, error) {
	b, err := scanBlog(r.DB.QueryRowContext(ctx,
		"SELECT "+blogColumns+" FROM blogs WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Blog{}, ErrNotFound
	}
	if err != nil {
		return model.Blog{}, fmt.Errorf("%w: get blog: %v", ErrStoreUnavailable, err)
	}
	return b, nil
}

// GetBySlug fetches a blog by its URL slug.
func (r *BlogRepo) GetBySlug(ctx context.Context, slug string) (model.Blog, error) {
	b, err := scanBlog(r.DB.QueryRowContext(ctx,
		"SELECT "+blogColumns+" FROM blogs WHERE slug=? LIMIT 1", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Blog{}, ErrNotFound
	}
	if err != nil {
		return model.Blog{}, fmt.Errorf("%w: get blog by slug: %v", ErrStoreUnavailable, err)
	}
	return b, nil
}

// IncrementViews bumps the views counter of a blog. Read paths call it
// best-effort; a failed bump never fails the read.
func (r *BlogRepo) IncrementViews(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE blogs SET views_count = views_count + 1 WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("%w: increment views: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// List returns a page of blogs, newest first. When status is empty all
// blogs are returned; readers with the "user" role pass
// model.StatusPublished so drafts stay hidden.
func (r *BlogRepo) List(ctx context.Context, status string, limit, offset int) ([]model.Blog, error) {
	q := "SELECT " + blogColumns + " FROM blogs"
	args := []any{}
	if status != "" {
		q += " WHERE status=?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	return r.queryBlogs(ctx, q, args...)
}

// ListByAuthor returns a page of blogs written by one author, newest
// first, with the same status filtering as List.
func (r *BlogRepo) ListByAuthor(ctx context.Context, authorID uint64, status string, limit, offset int) ([]model.Blog, error) {
	q := "SELECT " + blogColumns + " FROM blogs WHERE author_id=?"
	args := []any{authorID}
	if status != "" {
		q += " AND status=?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	return r.queryBlogs(ctx, q, args...)
}

func (r *BlogRepo) queryBlogs(ctx context.Context, q string, args ...any) ([]model.Blog, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list blogs: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var blogs []model.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list blogs: %v", ErrStoreUnavailable, err)
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list blogs: %v", ErrStoreUnavailable, err)
	}
	return blogs, nil
}

// Update overwrites title, slug, content and status of a blog.
func (r *BlogRepo) Update(ctx context.Context, b *model.Blog) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE blogs SET title=?, slug=?, content=?, status=? WHERE id=?",
		b.Title, b.Slug, b.Content, b.Status, b.ID)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: update blog: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes a blog row together with its comments and likes
// (cascaded by foreign keys).
func (r *BlogRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM blogs WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("%w: delete blog: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete blog: %v", ErrStoreUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
