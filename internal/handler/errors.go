// Package handler implements the HTTP layer: request parsing and
// validation, translation of service/repository errors into the API
// error envelope, and response shaping. Handlers never leak raw store
// or codec errors to clients.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/service"
)

// errorBody is the error envelope returned by every failing endpoint:
// {"code": "...", "message": "..."}.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Code: "BadRequest", Message: msg})
}

func forbidden(c echo.Context, msg string) error {
	return c.JSON(http.StatusForbidden, errorBody{Code: "ForbiddenError", Message: msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorBody{Code: "NotFoundError", Message: msg})
}

// respondError maps classified errors from the service and repository
// layers onto the envelope. Anything unknown is a 500; the middleware
// chain and this function are the only places errors become HTTP.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorBody{
			Code: "AuthenticationError", Message: "Invalid email or password"})
	case errors.Is(err, service.ErrRefreshExpired):
		return c.JSON(http.StatusUnauthorized, errorBody{
			Code: "AuthenticationError", Message: "Refresh token has expired"})
	case errors.Is(err, service.ErrInvalidRefresh):
		return c.JSON(http.StatusUnauthorized, errorBody{
			Code: "AuthenticationError", Message: "Invalid refresh token"})
	case errors.Is(err, service.ErrAdminNotAllowed):
		return forbidden(c, "You are not allowed to register as admin")
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, errorBody{
			Code: "Conflict", Message: "Email already exists"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, errorBody{
			Code: "Conflict", Message: "Duplicate entry"})
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "Resource not found")
	default:
		return c.JSON(http.StatusInternalServerError, errorBody{
			Code: "ServerError", Message: "Internal server error"})
	}
}
