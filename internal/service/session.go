// Package service holds the session orchestration that sits between
// the HTTP handlers and the token codec / stores. Handlers translate
// the sentinel errors defined here into the API error envelope.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/blog-api/internal/auth"
	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/utils"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password so responses do not reveal which part failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidRefresh is returned when a refresh token is revoked,
	// unknown or fails verification.
	ErrInvalidRefresh = errors.New("invalid refresh token")

	// ErrRefreshExpired is returned when the refresh token's own expiry
	// has passed; the client must log in again rather than refresh.
	ErrRefreshExpired = errors.New("refresh token has expired")

	// ErrAdminNotAllowed is returned when a non-whitelisted email tries
	// to register with the admin role.
	ErrAdminNotAllowed = errors.New("not allowed to register as admin")
)

// TokenStore is the server-side refresh token store consumed by the
// session service. Satisfied by *repository.TokenRepo.
type TokenStore interface {
	Save(ctx context.Context, userID uint64, token string, expiresAt time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
	DeleteByValue(ctx context.Context, token string) error
}

// IdentityStore supplies user records for registration and credential
// validation. Satisfied by *repository.UserRepo.
type IdentityStore interface {
	Create(ctx context.Context, username, email, password, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Session is the result of register/login: the user plus a fresh token
// pair. The refresh token travels back to the client in a cookie, the
// access token in the response body.
type Session struct {
	User             model.User
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// SessionService orchestrates the token lifecycle: issuance on
// register/login, access-token renewal on refresh and revocation on
// logout.
type SessionService struct {
	Cfg    config.Config
	Codec  *auth.Codec
	Tokens TokenStore
	Users  IdentityStore
}

func NewSessionService(cfg config.Config, codec *auth.Codec, tokens TokenStore, users IdentityStore) *SessionService {
	return &SessionService{Cfg: cfg, Codec: codec, Tokens: tokens, Users: users}
}

// Register creates a user and immediately opens a session for it. The
// admin role is granted only to whitelisted emails.
func (s *SessionService) Register(ctx context.Context, email, password, role string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if role != model.RoleAdmin {
		role = model.RoleUser
	}
	if role == model.RoleAdmin && !s.Cfg.AdminAllowed(email) {
		return nil, ErrAdminNotAllowed
	}

	username, err := utils.RandomUsername()
	if err != nil {
		return nil, err
	}
	uid, err := s.Users.Create(ctx, username, email, password, role, s.Cfg.BcryptCost)
	if err != nil {
		return nil, err // repository.ErrEmailExists or store fault
	}
	u, err := s.Users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, u)
}

// Login validates credentials and opens a new session. Unknown email
// and wrong password produce the same ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.open(ctx, u)
}

// open issues an access+refresh pair for the user and persists the
// refresh token. Every login adds its own session row, so multiple
// devices can stay signed in concurrently.
func (s *SessionService) open(ctx context.Context, u model.User) (*Session, error) {
	access, accessExp, err := s.Codec.Issue(u.ID, auth.PurposeAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.Codec.Issue(u.ID, auth.PurposeRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.Save(ctx, u.ID, refresh, refreshExp); err != nil {
		return nil, err
	}
	return &Session{
		User:             u,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a stored refresh token for a new access token. The
// store-existence check runs before signature verification: a revoked
// token is rejected even though it would still verify, which is what
// makes logout effective. The refresh token itself is not rotated; it
// stays valid until its own expiry or an explicit logout.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	ok, err := s.Tokens.Exists(ctx, refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok {
		return "", time.Time{}, ErrInvalidRefresh
	}

	subject, err := s.Codec.Verify(refreshToken, auth.PurposeRefresh)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return "", time.Time{}, ErrRefreshExpired
		}
		return "", time.Time{}, ErrInvalidRefresh
	}

	return issueAccess(s.Codec, subject)
}

// Logout revokes the refresh token by deleting its stored value. An
// empty token (no cookie sent) is a successful no-op.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Tokens.DeleteByValue(ctx, refreshToken)
}

func issueAccess(codec *auth.Codec, subject uint64) (string, time.Time, error) {
	access, exp, err := codec.Issue(subject, auth.PurposeAccess)
	if err != nil {
		return "", time.Time{}, err
	}
	return access, exp, nil
}
