package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/blog-api/internal/model"
)

// CommentRepo encapsulates database queries related to comments. The
// denormalized comments_count column on blogs is kept in step inside a
// transaction with every insert and delete.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a comment and bumps the blog's comments_count in one
// transaction. The populated comment, including the author's username,
// is returned for the response body.
func (r *CommentRepo) Create(ctx context.Context, blogID, userID uint64, content string) (model.Comment, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Comment{}, fmt.Errorf("%w: create comment: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO comments (blog_id, user_id, content) VALUES (?,?,?)",
		blogID, userID, content)
	if err != nil {
		return model.Comment{}, fmt.Errorf("%w: create comment: %v", ErrStoreUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, fmt.Errorf("%w: create comment: %v", ErrStoreUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE blogs SET comments_count = comments_count + 1 WHERE id=?", blogID); err != nil {
		return model.Comment{}, fmt.Errorf("%w: create comment: %v", ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Comment{}, fmt.Errorf("%w: create comment: %v", ErrStoreUnavailable, err)
	}

	var c model.Comment
	err = r.DB.QueryRowContext(ctx,
		`SELECT c.id, c.blog_id, c.user_id, c.content, u.username, c.created_at, c.updated_at
		 FROM comments c JOIN users u ON u.id = c.user_id WHERE c.id=?`, id).
		Scan(&c.ID, &c.BlogID, &c.UserID, &c.Content, &c.Username, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Comment{}, fmt.Errorf("%w: create comment: %v", ErrStoreUnavailable, err)
	}
	return c, nil
}

// GetByID fetches a single comment, used for ownership checks before
// update or delete.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	var c model.Comment
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, blog_id, user_id, content, created_at, updated_at FROM comments WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.BlogID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, ErrNotFound
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("%w: get comment: %v", ErrStoreUnavailable, err)
	}
	return c, nil
}

// ListByBlog returns a page of comments for a blog, newest first, each
// joined with the commenting user's username.
func (r *CommentRepo) ListByBlog(ctx context.Context, blogID uint64, limit, offset int) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.id, c.blog_id, c.user_id, c.content, u.username, c.created_at, c.updated_at
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.blog_id=? ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`,
		blogID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list comments: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.BlogID, &c.UserID, &c.Content, &c.Username,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: list comments: %v", ErrStoreUnavailable, err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list comments: %v", ErrStoreUnavailable, err)
	}
	return comments, nil
}

// UpdateContent replaces a comment's content.
func (r *CommentRepo) UpdateContent(ctx context.Context, id uint64, content string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET content=? WHERE id=?", content, id)
	if err != nil {
		return fmt.Errorf("%w: update comment: %v", ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a comment and decrements the blog's comments_count in
// one transaction.
func (r *CommentRepo) Delete(ctx context.Context, id, blogID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: delete comment: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("%w: delete comment: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete comment: %v", ErrStoreUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE blogs SET comments_count = comments_count - 1 WHERE id=? AND comments_count > 0",
		blogID); err != nil {
		return fmt.Errorf("%w: delete comment: %v", ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: delete comment: %v", ErrStoreUnavailable, err)
	}
	return nil
}
