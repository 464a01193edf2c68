package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/blog-api/internal/auth"
	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/utils"
)

// fakeTokens is an in-memory TokenStore.
type fakeTokens struct {
	rows map[string]uint64 // token value -> owner
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[string]uint64{}} }

func (f *fakeTokens) Save(_ context.Context, userID uint64, token string, _ time.Time) error {
	f.rows[token] = userID
	return nil
}
func (f *fakeTokens) Exists(_ context.Context, token string) (bool, error) {
	_, ok := f.rows[token]
	return ok, nil
}
func (f *fakeTokens) DeleteByValue(_ context.Context, token string) error {
	delete(f.rows, token)
	return nil
}

// fakeUsers is an in-memory IdentityStore.
type fakeUsers struct {
	nextID  uint64
	byID    map[uint64]model.User
	byEmail map[string]uint64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]model.User{}, byEmail: map[string]uint64{}}
}

func (f *fakeUsers) Create(_ context.Context, username, email, password, role string, cost int) (uint64, error) {
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	f.nextID++
	f.byID[f.nextID] = model.User{
		ID: f.nextID, Username: username, Email: email, PasswordHash: hash, Role: role,
	}
	f.byEmail[email] = f.nextID
	return f.nextID, nil
}
func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return f.byID[id], nil
}
func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func newTestService(t *testing.T, refreshTTL time.Duration) (*SessionService, *fakeTokens, *fakeUsers) {
	t.Helper()
	codec, err := auth.NewCodec(auth.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    refreshTTL,
	})
	require.NoError(t, err)

	tokens := newFakeTokens()
	users := newFakeUsers()
	cfg := config.Config{Env: "test", BcryptCost: 4, AdminEmails: []string{"root@x.com"}}
	return NewSessionService(cfg, codec, tokens, users), tokens, users
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	svc, tokens, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "a@x.com", "validpass1", "user")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, sess.User.Role)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)

	// Refresh mints a new access token for the same subject.
	access, exp, err := svc.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))
	sub, err := svc.Codec.Verify(access, auth.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, sub)

	// The refresh token is not rotated: the stored value is unchanged
	// and stays usable.
	ok, err := tokens.Exists(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)

	// Logout deletes the stored token; a subsequent refresh fails even
	// though the token's signature is still valid.
	require.NoError(t, svc.Logout(ctx, sess.RefreshToken))
	_, _, err = svc.Refresh(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "validpass1", "user")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody@x.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "a@x.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := svc.Login(ctx, "a@x.com", "validpass1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sess.User.Email)
}

func TestRegister_AdminWhitelist(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "mallory@x.com", "validpass1", "admin")
	assert.ErrorIs(t, err, ErrAdminNotAllowed)

	sess, err := svc.Register(ctx, "root@x.com", "validpass1", "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, sess.User.Role)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	svc, _, _ := newTestService(t, -time.Second)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "a@x.com", "validpass1", "user")
	require.NoError(t, err)

	// Still stored, but the token's own expiry has passed.
	_, _, err = svc.Refresh(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshExpired)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, tokens, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "a@x.com", "validpass1", "user")
	require.NoError(t, err)

	// Even if an access token somehow ended up in the store, purpose
	// isolation rejects it at the refresh endpoint.
	require.NoError(t, tokens.Save(ctx, sess.User.ID, sess.AccessToken, time.Now().Add(time.Hour)))
	_, _, err = svc.Refresh(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestLogout_NoTokenIsNoop(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	assert.NoError(t, svc.Logout(context.Background(), ""))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, users := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "validpass1", "user")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "a@x.com", "validpass1", "user")
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	// Sanity: only one account exists for the email.
	u, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "1", strconv.FormatUint(u.ID, 10))
}
