package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/middleware"
)

var errNoSubject = errors.New("no authenticated subject in context")

// subjectID returns the authenticated user id stored by the
// Authenticate gate. Handlers behind the gate can rely on it being
// present; the error path only fires on misconfigured routes.
func subjectID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errNoSubject
	}
	return id, nil
}

// pagination parses ?limit= and ?page= with the given default limit.
// Returns limit and offset clamped to sane bounds.
func pagination(c echo.Context, defLimit int) (limit, offset int) {
	limit = defLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	return limit, (page - 1) * limit
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
