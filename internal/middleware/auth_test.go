package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/blog-api/internal/auth"
	"github.com/iliyamo/blog-api/internal/repository"
)

func newCodec(t *testing.T, accessTTL time.Duration) *auth.Codec {
	t.Helper()
	c, err := auth.NewCodec(auth.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     accessTTL,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)
	return c
}

// run sends a request through the given middleware chain with a final
// handler that records whether it was reached.
func run(t *testing.T, header string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, *bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := func(c echo.Context) error { reached = true; return c.NoContent(http.StatusOK) }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec, &reached
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAuthenticate_MissingHeaderShortCircuitsBeforeCodec(t *testing.T) {
	// A nil codec proves the gate rejects header-less requests without
	// ever touching token verification.
	rec, reached := run(t, "", Authenticate(nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "AuthenticationError", env.Code)
	assert.Equal(t, "Missing or invalid authorization header", env.Message)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	rec, reached := run(t, "Basic abc123", Authenticate(nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := newCodec(t, time.Minute)
	tok, _, err := codec.Issue(42, auth.PurposeAccess)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got uint64
	h := Authenticate(codec)(func(c echo.Context) error {
		id, ok := UserID(c)
		require.True(t, ok)
		got = id
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), got)
}

func TestAuthenticate_ExpiredVsInvalidMessages(t *testing.T) {
	expiredCodec := newCodec(t, -time.Second)
	expired, _, err := expiredCodec.Issue(1, auth.PurposeAccess)
	require.NoError(t, err)

	rec, reached := run(t, "Bearer "+expired, Authenticate(expiredCodec))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, "Access token has expired", decodeEnvelope(t, rec).Message)

	codec := newCodec(t, time.Minute)
	rec, reached = run(t, "Bearer not-a-token", Authenticate(codec))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, "Invalid access token", decodeEnvelope(t, rec).Message)
}

func TestAuthenticate_RejectsRefreshToken(t *testing.T) {
	codec := newCodec(t, time.Minute)
	refresh, _, err := codec.Issue(1, auth.PurposeRefresh)
	require.NoError(t, err)

	rec, reached := run(t, "Bearer "+refresh, Authenticate(codec))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

// roleMap is a fixed RoleFinder for tests.
type roleMap map[uint64]string

func (m roleMap) FindRole(_ context.Context, id uint64) (string, error) {
	role, ok := m[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return role, nil
}

// failingRoles always reports a store fault.
type failingRoles struct{}

func (failingRoles) FindRole(context.Context, uint64) (string, error) {
	return "", repository.ErrStoreUnavailable
}

func chainWithSubject(t *testing.T, codec *auth.Codec, subject uint64, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, *bool) {
	t.Helper()
	tok, _, err := codec.Issue(subject, auth.PurposeAccess)
	require.NoError(t, err)
	return run(t, "Bearer "+tok, Authenticate(codec), mw)
}

func TestRequireRole_AllowsAndDenies(t *testing.T) {
	codec := newCodec(t, time.Minute)
	roles := roleMap{1: "admin", 2: "user"}

	// Admin route: admin passes, user is forbidden, handler never runs.
	rec, reached := chainWithSubject(t, codec, 1, RequireRole(roles, "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)

	rec, reached = chainWithSubject(t, codec, 2, RequireRole(roles, "admin"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, "ForbiddenError", decodeEnvelope(t, rec).Code)

	// Both roles allowed.
	rec, reached = chainWithSubject(t, codec, 2, RequireRole(roles, "user", "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestRequireRole_DeletedSubject(t *testing.T) {
	codec := newCodec(t, time.Minute)
	rec, reached := chainWithSubject(t, codec, 99, RequireRole(roleMap{}, "user"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, "NotFoundError", decodeEnvelope(t, rec).Code)
}

func TestRequireRole_StoreFault(t *testing.T) {
	codec := newCodec(t, time.Minute)
	rec, reached := chainWithSubject(t, codec, 1, RequireRole(failingRoles{}, "user"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, "ServerError", decodeEnvelope(t, rec).Code)
}

func TestRequireRole_WithoutAuthenticate(t *testing.T) {
	rec, reached := run(t, "", RequireRole(roleMap{}, "user"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}
