package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/service"
)

// refreshCookie is the name of the HTTP-only cookie carrying the
// refresh token. The access token never travels in a cookie.
const refreshCookie = "refreshToken"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Sessions *service.SessionService
}

func NewAuthHandler(cfg config.Config, sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Sessions: sessions}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // user | admin
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
type authResp struct {
	User        userPart `json:"user"`
	AccessToken string   `json:"accessToken"`
	Message     string   `json:"message,omitempty"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// validCredentials applies the boundary validation shared by register
// and login: a plausible email of bounded length and a password of at
// least 8 characters.
func validCredentials(email, password string) string {
	switch {
	case email == "":
		return "Email is required"
	case len(email) > 50:
		return "Email must be at most 50 characters long"
	case !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@"):
		return "Invalid email format"
	case password == "":
		return "Password is required"
	case len(password) < 8:
		return "Password must be at least 8 characters long"
	}
	return ""
}

// Register handles POST /api/v1/auth/register: create the user, open a
// session and hand back the token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validCredentials(req.Email, req.Password); msg != "" {
		return badRequest(c, msg)
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != "" && role != model.RoleUser && role != model.RoleAdmin {
		return badRequest(c, "Role must be either user or admin")
	}

	sess, err := h.Sessions.Register(c.Request().Context(), req.Email, req.Password, role)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, sess.RefreshToken, sess.RefreshExpiresAt)
	return c.JSON(http.StatusCreated, authResp{
		User:        toUserPart(sess.User),
		AccessToken: sess.AccessToken,
		Message:     "User registered successfully",
	})
}

// Login handles POST /api/v1/auth/login: validate credentials and open
// a new session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validCredentials(req.Email, req.Password); msg != "" {
		return badRequest(c, msg)
	}

	sess, err := h.Sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, sess.RefreshToken, sess.RefreshExpiresAt)
	return c.JSON(http.StatusCreated, authResp{
		User:        toUserPart(sess.User),
		AccessToken: sess.AccessToken,
	})
}

// Refresh handles POST /api/v1/auth/refresh-token: exchange the cookie
// refresh token for a new access token. The refresh token is reused,
// not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, errorBody{
			Code: "AuthenticationError", Message: "Invalid refresh token"})
	}

	access, _, err := h.Sessions.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"accessToken": access})
}

// Logout handles POST /api/v1/auth/logout (protected): delete the
// stored refresh token and clear the cookie. A request without the
// cookie still succeeds; there is simply nothing to revoke.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := ""
	if cookie, err := c.Cookie(refreshCookie); err == nil {
		token = cookie.Value
	}
	if err := h.Sessions.Logout(c.Request().Context(), token); err != nil {
		return respondError(c, err)
	}
	h.clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// setRefreshCookie installs the refresh token cookie: HTTP-only so
// scripts cannot read it, SameSite=Strict so it is never attached to
// cross-site requests, Secure outside of dev.
func (h *AuthHandler) setRefreshCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteStrictMode,
	})
}
