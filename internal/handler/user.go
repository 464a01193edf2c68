package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
)

// UserHandler bundles dependencies for profile and admin user
// endpoints. The token repo is needed so account deletion revokes
// every live session of the removed user.
type UserHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(users *repository.UserRepo, tokens *repository.TokenRepo) *UserHandler {
	return &UserHandler{Users: users, Tokens: tokens}
}

type updateUserReq struct {
	Username    string             `json:"username"`
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	SocialLinks *model.SocialLinks `json:"socialLinks"`
}

// Current handles GET /api/v1/users/current.
func (h *UserHandler) Current(c echo.Context) error {
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}
	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// UpdateCurrent handles PUT /api/v1/users/current. Only profile fields
// are updatable here; email, password and role are not.
func (h *UserHandler) UpdateCurrent(c echo.Context) error {
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.Username) > 30 {
		return badRequest(c, "Username cannot exceed 30 characters")
	}
	if len(req.FirstName) > 20 || len(req.LastName) > 20 {
		return badRequest(c, "Name cannot exceed 20 characters")
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	if v := strings.TrimSpace(req.Username); v != "" {
		u.Username = v
	}
	if v := strings.TrimSpace(req.FirstName); v != "" {
		u.FirstName = v
	}
	if v := strings.TrimSpace(req.LastName); v != "" {
		u.LastName = v
	}
	if req.SocialLinks != nil {
		u.SocialLinks = *req.SocialLinks
	}
	if err := h.Users.Update(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, errorBody{
				Code: "Conflict", Message: "Username is already taken"})
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// DeleteCurrent handles DELETE /api/v1/users/current. All refresh
// tokens of the account are revoked so no session survives deletion.
func (h *UserHandler) DeleteCurrent(c echo.Context) error {
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	if err := h.Users.Delete(ctx, userID); err != nil {
		return respondError(c, err)
	}
	if err := h.Tokens.DeleteAllForUser(ctx, userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /api/v1/users (admin only) with pagination.
func (h *UserHandler) List(c echo.Context) error {
	limit, offset := pagination(c, 8)
	users, err := h.Users.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	page := offset/limit + 1
	return c.JSON(http.StatusOK, echo.Map{
		"page": page, "result": len(users), "data": users,
	})
}

// GetByID handles GET /api/v1/users/:userId (admin only).
func (h *UserHandler) GetByID(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// DeleteByID handles DELETE /api/v1/users/:userId (admin only), with
// the same token fan-out revocation as self-deletion.
func (h *UserHandler) DeleteByID(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	ctx := c.Request().Context()
	if err := h.Users.Delete(ctx, userID); err != nil {
		return respondError(c, err)
	}
	if err := h.Tokens.DeleteAllForUser(ctx, userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
