package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. The
// plain token value is never stored; only its SHA-256 hex digest, so a
// leaked database cannot be replayed against the API. A user may hold
// several live rows at once, one per session or device.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
