package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/repository"
)

// RoleFinder supplies the role for a subject id. Satisfied by
// *repository.UserRepo.
type RoleFinder interface {
	FindRole(ctx context.Context, id uint64) (string, error)
}

// RequireRole returns a middleware that allows the request through only
// when the authenticated subject's role is in the given set. The role
// is looked up on every request instead of being trusted from the
// token or cached, so deleting an account or demoting a role takes
// effect immediately.
//
// A subject whose account no longer exists gets 404: the token may
// still verify, but it references a deleted user. A known subject with
// a role outside the set gets 403.
func RequireRole(users RoleFinder, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := UserID(c)
			if !ok {
				// Authenticate did not run; treat as unauthenticated.
				return c.JSON(http.StatusUnauthorized, envelope{
					Code:    "AuthenticationError",
					Message: "Missing or invalid authorization header",
				})
			}

			role, err := users.FindRole(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusNotFound, envelope{
						Code:    "NotFoundError",
						Message: "User not found",
					})
				}
				return c.JSON(http.StatusInternalServerError, envelope{
					Code:    "ServerError",
					Message: "Internal server error",
				})
			}
			if !allowed[role] {
				return c.JSON(http.StatusForbidden, envelope{
					Code:    "ForbiddenError",
					Message: "You do not have permission to access this resource",
				})
			}

			c.Set(ctxRole, role)
			return next(c)
		}
	}
}
