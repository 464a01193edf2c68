// Package middleware provides the request gates protected routes pass
// through: Authenticate validates the bearer access token and attaches
// the subject to the request context, RequireRole checks the subject's
// role against the set allowed for the route. The gates run in that
// fixed order and each short-circuits the chain on failure.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/auth"
)

// Context keys under which the gates store the resolved identity.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// envelope is the error response body shared by both gates:
// {"code": "...", "message": "..."}.
type envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Authenticate returns a middleware that validates a Bearer access
// token and stores the token's subject in the request context. A
// missing or malformed Authorization header is rejected before the
// codec is ever consulted, so no verification work is wasted and the
// response does not leak whether a token would have been valid.
// Expired and otherwise invalid tokens produce distinct messages so a
// client can tell "refresh now" apart from "log in again".
func Authenticate(codec *auth.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, envelope{
					Code:    "AuthenticationError",
					Message: "Missing or invalid authorization header",
				})
			}
			token := strings.TrimPrefix(header, "Bearer ")

			subject, err := codec.Verify(token, auth.PurposeAccess)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, envelope{
						Code:    "AuthenticationError",
						Message: "Access token has expired",
					})
				}
				return c.JSON(http.StatusUnauthorized, envelope{
					Code:    "AuthenticationError",
					Message: "Invalid access token",
				})
			}

			c.Set(ctxUserID, subject)
			return next(c)
		}
	}
}

// UserID extracts the authenticated subject id stored by Authenticate.
// The boolean is false when the request never passed the gate.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok
}

// Role extracts the role resolved by RequireRole, if any.
func Role(c echo.Context) (string, bool) {
	role, ok := c.Get(ctxRole).(string)
	return role, ok
}
