package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// LikeRepo encapsulates database queries related to blog likes. The
// (blog_id, user_id) unique index guarantees one like per user, and
// the blogs.likes_count column is adjusted transactionally.
type LikeRepo struct{ DB *sql.DB }

func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{DB: db} }

// Like records that a user likes a blog and bumps the counter. Liking
// a blog twice maps to ErrDuplicate. The new likes_count is returned.
func (r *LikeRepo) Like(ctx context.Context, blogID, userID uint64) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: like blog: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO likes (blog_id, user_id) VALUES (?,?)", blogID, userID); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("%w: like blog: %v", ErrStoreUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE blogs SET likes_count = likes_count + 1 WHERE id=?", blogID); err != nil {
		return 0, fmt.Errorf("%w: like blog: %v", ErrStoreUnavailable, err)
	}

	var count uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT likes_count FROM blogs WHERE id=?", blogID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: like blog: %v", ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: like blog: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

// Unlike removes a user's like and decrements the counter. Removing a
// like that does not exist maps to ErrNotFound so the handler can tell
// the client they had not liked the blog.
func (r *LikeRepo) Unlike(ctx context.Context, blogID, userID uint64) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: unlike blog: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM likes WHERE blog_id=? AND user_id=?", blogID, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: unlike blog: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: unlike blog: %v", ErrStoreUnavailable, err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE blogs SET likes_count = likes_count - 1 WHERE id=? AND likes_count > 0",
		blogID); err != nil {
		return 0, fmt.Errorf("%w: unlike blog: %v", ErrStoreUnavailable, err)
	}

	var count uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT likes_count FROM blogs WHERE id=?", blogID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: unlike blog: %v", ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: unlike blog: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

// Exists reports whether the user already likes the blog.
func (r *LikeRepo) Exists(ctx context.Context, blogID, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM likes WHERE blog_id=? AND user_id=? LIMIT 1", blogID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: lookup like: %v", ErrStoreUnavailable, err)
	}
	return true, nil
}
