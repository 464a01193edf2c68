package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/blog-api/internal/auth"
	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/service"
	"github.com/iliyamo/blog-api/internal/utils"
)

// In-memory stand-ins for the MySQL repositories so the full
// register/login/refresh/logout flow runs without a database.

type memTokens struct {
	rows map[string]uint64
}

func (m *memTokens) Save(_ context.Context, userID uint64, token string, _ time.Time) error {
	m.rows[token] = userID
	return nil
}

func (m *memTokens) Exists(_ context.Context, token string) (bool, error) {
	_, ok := m.rows[token]
	return ok, nil
}

func (m *memTokens) DeleteByValue(_ context.Context, token string) error {
	delete(m.rows, token)
	return nil
}

type memUsers struct {
	nextID uint64
	byID   map[uint64]model.User
}

func (m *memUsers) Create(_ context.Context, username, email, password, role string, cost int) (uint64, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.nextID++
	m.byID[m.nextID] = model.User{
		ID: m.nextID, Username: username, Email: email, PasswordHash: hash, Role: role,
	}
	return m.nextID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func newAuthHandler(t *testing.T) (*AuthHandler, *memTokens) {
	t.Helper()
	codec, err := auth.NewCodec(auth.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	tokens := &memTokens{rows: map[string]uint64{}}
	users := &memUsers{byID: map[uint64]model.User{}}
	cfg := config.Config{Env: "test", BcryptCost: 4}
	return NewAuthHandler(cfg, service.NewSessionService(cfg, codec, tokens, users)), tokens
}

func postJSON(h echo.HandlerFunc, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range (&http.Response{Header: rec.Header()}).Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAuthFlow_RegisterRefreshLogout(t *testing.T) {
	h, tokens := newAuthHandler(t)

	// Register: 201 with the user, an access token in the body and the
	// refresh token in an HTTP-only cookie.
	rec := postJSON(h.Register, `{"email":"reader@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var reg authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, "reader@example.com", reg.User.Email)
	assert.Equal(t, model.RoleUser, reg.User.Role)
	assert.Equal(t, "User registered successfully", reg.Message)

	ck := findCookie(rec, "refreshToken")
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	assert.False(t, ck.Secure) // test env is not prod
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	require.Contains(t, tokens.rows, ck.Value)

	// Refresh: a new access token for the same subject, no rotation of
	// the cookie token.
	rec = postJSON(h.Refresh, "", &http.Cookie{Name: "refreshToken", Value: ck.Value})
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed["accessToken"])
	assert.Len(t, tokens.rows, 1)

	// Logout: 204, cookie cleared, stored token gone.
	rec = postJSON(h.Logout, "", &http.Cookie{Name: "refreshToken", Value: ck.Value})
	require.Equal(t, http.StatusNoContent, rec.Code)
	cleared := findCookie(rec, "refreshToken")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
	assert.Empty(t, tokens.rows)

	// The revoked token no longer refreshes even though its signature
	// would still verify.
	rec = postJSON(h.Refresh, "", &http.Cookie{Name: "refreshToken", Value: ck.Value})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AuthenticationError", body.Code)
	assert.Equal(t, "Invalid refresh token", body.Message)
}

func TestLogin_WrongPassword(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := postJSON(h.Register, `{"email":"x@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(h.Login, `{"email":"x@example.com","password":"not-the-password"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AuthenticationError", body.Code)
	assert.Equal(t, "Invalid email or password", body.Message)
}

func TestLogin_Succeeds(t *testing.T) {
	h, tokens := newAuthHandler(t)

	rec := postJSON(h.Register, `{"email":"y@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(h.Login, `{"email":"y@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.Message)

	// Register and login each persisted their own session row.
	assert.Len(t, tokens.rows, 2)
}

func TestRegister_Validation(t *testing.T) {
	h, _ := newAuthHandler(t)

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"missing email", `{"password":"hunter2hunter2"}`, "Email is required"},
		{"bad email", `{"email":"nope","password":"hunter2hunter2"}`, "Invalid email format"},
		{"short password", `{"email":"a@b.com","password":"short"}`, "Password must be at least 8 characters long"},
		{"bad role", `{"email":"a@b.com","password":"hunter2hunter2","role":"owner"}`, "Role must be either user or admin"},
		{"long email", fmt.Sprintf(`{"email":"%s@example.com","password":"hunter2hunter2"}`, strings.Repeat("a", 50)), "Email must be at most 50 characters long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(h.Register, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "BadRequest", body.Code)
			assert.Equal(t, tc.msg, body.Message)
		})
	}
}

func TestRegister_AdminWhitelist(t *testing.T) {
	h, _ := newAuthHandler(t)
	h.Cfg.AdminEmails = []string{"boss@example.com"}
	h.Sessions.Cfg.AdminEmails = []string{"boss@example.com"}

	rec := postJSON(h.Register, `{"email":"intruder@example.com","password":"hunter2hunter2","role":"admin"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ForbiddenError", body.Code)

	rec = postJSON(h.Register, `{"email":"boss@example.com","password":"hunter2hunter2","role":"admin"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleAdmin, resp.User.Role)
}

func TestRefresh_MissingCookie(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := postJSON(h.Refresh, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AuthenticationError", body.Code)
	assert.Equal(t, "Invalid refresh token", body.Message)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := postJSON(h.Register, `{"email":"dup@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(h.Register, `{"email":"dup@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Conflict", body.Code)
	assert.Equal(t, "Email already exists", body.Message)
}
