package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/repository"
)

// LikeHandler bundles dependencies for like endpoints.
type LikeHandler struct {
	Likes *repository.LikeRepo
	Blogs *repository.BlogRepo
}

func NewLikeHandler(likes *repository.LikeRepo, blogs *repository.BlogRepo) *LikeHandler {
	return &LikeHandler{Likes: likes, Blogs: blogs}
}

// Like handles POST /api/v1/likes/blog/:blogId. Liking the same blog
// twice is a 400, not an error worth a 5xx.
func (h *LikeHandler) Like(c echo.Context) error {
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return badRequest(c, "Invalid blog id")
	}
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	blog, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		return respondError(c, err)
	}
	count, err := h.Likes.Like(ctx, blogID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return badRequest(c, "You have already liked this blog")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Blog liked successfully",
		"title":      blog.Title,
		"likesCount": count,
	})
}

// Unlike handles DELETE /api/v1/likes/blog/:blogId.
func (h *LikeHandler) Unlike(c echo.Context) error {
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return badRequest(c, "Invalid blog id")
	}
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	if _, err := h.Blogs.GetByID(ctx, blogID); err != nil {
		return respondError(c, err)
	}
	count, err := h.Likes.Unlike(ctx, blogID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return badRequest(c, "You have not liked this blog")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Like removed successfully",
		"likesCount": count,
	})
}
