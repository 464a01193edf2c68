package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
)

// CommentHandler bundles dependencies for comment endpoints.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Blogs    *repository.BlogRepo
}

func NewCommentHandler(comments *repository.CommentRepo, blogs *repository.BlogRepo) *CommentHandler {
	return &CommentHandler{Comments: comments, Blogs: blogs}
}

type commentReq struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/comments/blog/:blogId.
func (h *CommentHandler) Create(c echo.Context) error {
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return badRequest(c, "Invalid blog id")
	}
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return badRequest(c, "Content is required")
	}
	if len(content) > 500 {
		return badRequest(c, "Content cannot exceed 500 characters")
	}

	ctx := c.Request().Context()
	if _, err := h.Blogs.GetByID(ctx, blogID); err != nil {
		return respondError(c, err)
	}
	comment, err := h.Comments.Create(ctx, blogID, userID, content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

// ListByBlog handles GET /api/v1/comments/blog/:blogId with pagination.
func (h *CommentHandler) ListByBlog(c echo.Context) error {
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return badRequest(c, "Invalid blog id")
	}
	ctx := c.Request().Context()
	if _, err := h.Blogs.GetByID(ctx, blogID); err != nil {
		return respondError(c, err)
	}
	limit, offset := pagination(c, 20)
	comments, err := h.Comments.ListByBlog(ctx, blogID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	page := offset/limit + 1
	return c.JSON(http.StatusOK, echo.Map{
		"total": len(comments), "page": page, "limit": limit, "comments": comments,
	})
}

// Update handles PUT /api/v1/comments/:commentId. Only the comment's
// author may edit it.
func (h *CommentHandler) Update(c echo.Context) error {
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return badRequest(c, "Invalid comment id")
	}
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return badRequest(c, "Content is required")
	}
	if len(content) > 500 {
		return badRequest(c, "Content cannot exceed 500 characters")
	}

	ctx := c.Request().Context()
	comment, err := h.Comments.GetByID(ctx, commentID)
	if err != nil {
		return respondError(c, err)
	}
	if comment.UserID != userID {
		return forbidden(c, "You can only edit your own comments")
	}
	if err := h.Comments.UpdateContent(ctx, commentID, content); err != nil {
		return respondError(c, err)
	}
	comment.Content = content
	return c.JSON(http.StatusOK, echo.Map{"comment": comment})
}

// Delete handles DELETE /api/v1/comments/:commentId. The author or an
// admin may delete a comment.
func (h *CommentHandler) Delete(c echo.Context) error {
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return badRequest(c, "Invalid comment id")
	}
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	comment, err := h.Comments.GetByID(ctx, commentID)
	if err != nil {
		return respondError(c, err)
	}
	role, _ := middleware.Role(c)
	if comment.UserID != userID && role != model.RoleAdmin {
		return forbidden(c, "You can only delete your own comments")
	}
	if err := h.Comments.Delete(ctx, commentID, comment.BlogID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
