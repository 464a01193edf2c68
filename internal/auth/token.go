// Package auth implements issuing and verification of the signed tokens
// that back user sessions. Two token classes exist: short-lived access
// tokens presented on every protected request, and long-lived refresh
// tokens exchanged for new access tokens. Each class is signed with its
// own secret so that a leaked secret can only forge one class.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose tags a token as belonging to one of the two token classes.
// Verify rejects a token whose embedded purpose does not match the
// expected one, so a refresh token can never pass as an access token.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

var (
	// ErrNoSigningKey is returned by NewCodec when a secret is missing.
	// This is a startup misconfiguration, not a runtime condition.
	ErrNoSigningKey = errors.New("auth: missing signing key")

	// ErrTokenExpired is returned by Verify when the token's expiry has
	// passed. Everything else wrong with a token maps to ErrTokenInvalid.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenInvalid is returned by Verify for bad signatures, malformed
	// tokens and purpose mismatches.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Config carries the signing material and lifetimes for both token
// classes. It is built once at startup and passed into NewCodec; the
// codec never consults ambient configuration at verify time.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// claims is the JWT claim set for both token classes. Subject holds the
// user id in decimal form, Purpose the token class.
type claims struct {
	jwt.RegisteredClaims
	Purpose Purpose `json:"purpose"`
}

// Codec creates and verifies signed session tokens.
type Codec struct {
	cfg Config
}

// NewCodec validates the configuration and returns a Codec. Missing
// secrets surface as ErrNoSigningKey so the process can refuse to start.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, ErrNoSigningKey
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Codec{cfg: cfg}, nil
}

// AccessTTL reports the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.cfg.AccessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.cfg.RefreshTTL }

// Issue builds and signs an HS256 token for the given subject and
// purpose. It returns the serialized token and its expiry time.
func (c *Codec) Issue(subject uint64, purpose Purpose) (string, time.Time, error) {
	secret, ttl := c.material(purpose)
	now := time.Now().UTC()
	exp := now.Add(ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(subject, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Purpose: purpose,
	})
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses the token, checks its signature and expiry against the
// secret for the expected purpose, and returns the subject id. Every
// failure maps to exactly ErrTokenExpired or ErrTokenInvalid.
func (c *Codec) Verify(token string, purpose Purpose) (uint64, error) {
	secret, _ := c.material(purpose)

	var cl claims
	tok, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !tok.Valid || cl.Purpose != purpose {
		return 0, ErrTokenInvalid
	}
	sub, err := strconv.ParseUint(cl.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return sub, nil
}

// material selects the secret and TTL for a token class.
func (c *Codec) material(purpose Purpose) ([]byte, time.Duration) {
	if purpose == PurposeRefresh {
		return c.cfg.RefreshSecret, c.cfg.RefreshTTL
	}
	return c.cfg.AccessSecret, c.cfg.AccessTTL
}
