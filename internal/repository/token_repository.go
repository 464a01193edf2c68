package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// TokenRepo is the server-side refresh token store. Rows are keyed by
// the SHA-256 hex digest of the token value, so lookups are by exact
// value while the database never holds a replayable credential. A
// refresh token is usable only while its row exists: deleting the row
// revokes the token even though its signature is still valid.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// hashToken returns the SHA-256 hex digest used as the storage key.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Save inserts a refresh token row for the user. No uniqueness is
// enforced per user; each login adds one session row.
func (r *TokenRepo) Save(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, hashToken(token), expiresAt)
	if err != nil {
		return fmt.Errorf("%w: save refresh token: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Exists reports whether the exact token value is still stored and not
// past its row expiry. This is the revocation check: logout deletes
// the row, after which Exists returns false for a cryptographically
// valid token.
func (r *TokenRepo) Exists(ctx context.Context, token string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM refresh_tokens WHERE token_hash=? AND expires_at > UTC_TIMESTAMP() LIMIT 1",
		hashToken(token)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: lookup refresh token: %v", ErrStoreUnavailable, err)
	}
	return true, nil
}

// DeleteByValue removes the row for the exact token value. Deleting a
// value that is not stored is a no-op, not an error.
func (r *TokenRepo) DeleteByValue(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token_hash=?", hashToken(token))
	if err != nil {
		return fmt.Errorf("%w: delete refresh token: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteAllForUser removes every session row belonging to the user.
// Called when an account is deleted so stale refresh tokens cannot
// mint access tokens for a gone subject.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	if err != nil {
		return fmt.Errorf("%w: delete user tokens: %v", ErrStoreUnavailable, err)
	}
	return nil
}
