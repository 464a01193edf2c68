package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/service/publisher"
	"github.com/iliyamo/blog-api/internal/utils"
)

// BlogHandler bundles dependencies for blog CRUD endpoints.
type BlogHandler struct {
	Blogs *repository.BlogRepo
}

func NewBlogHandler(blogs *repository.BlogRepo) *BlogHandler {
	return &BlogHandler{Blogs: blogs}
}

type blogReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// validateBlogReq normalizes and checks a create/update payload.
// Returns a message for the 400 response when invalid.
func validateBlogReq(req *blogReq, requireAll bool) string {
	req.Title = strings.TrimSpace(req.Title)
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	switch {
	case requireAll && req.Title == "":
		return "Title is required"
	case len(req.Title) > 100:
		return "Title cannot exceed 100 characters"
	case requireAll && strings.TrimSpace(req.Content) == "":
		return "Content is required"
	case req.Status != "" && req.Status != model.StatusDraft && req.Status != model.StatusPublished:
		return "Status must be either draft or published"
	}
	return ""
}

// visibleStatus returns the status filter for the requesting role:
// readers see published blogs only, admins see everything.
func visibleStatus(c echo.Context) string {
	if role, ok := middleware.Role(c); ok && role == model.RoleAdmin {
		return ""
	}
	return model.StatusPublished
}

// Create handles POST /api/v1/blogs.
func (h *BlogHandler) Create(c echo.Context) error {
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req blogReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateBlogReq(&req, true); msg != "" {
		return badRequest(c, msg)
	}
	status := req.Status
	if status == "" {
		status = model.StatusDraft
	}

	blog := &model.Blog{
		Title:    req.Title,
		Slug:     utils.Slugify(req.Title),
		Content:  req.Content,
		AuthorID: userID,
		Status:   status,
	}
	if err := h.Blogs.Create(c.Request().Context(), blog); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, errorBody{
				Code: "Conflict", Message: "A blog with this title already exists"})
		}
		return respondError(c, err)
	}

	if blog.Status == model.StatusPublished {
		// Best-effort event; a broker outage never fails the request.
		_ = publisher.PublishBlogPublished(c.Request().Context(), publisher.BlogPublishedEvent{
			BlogID:      blog.ID,
			Slug:        blog.Slug,
			Title:       blog.Title,
			AuthorID:    blog.AuthorID,
			PublishedAt: blog.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{"blog": blog})
}

// List handles GET /api/v1/blogs with pagination. Readers with the
// "user" role only see published blogs.
func (h *BlogHandler) List(c echo.Context) error {
	limit, offset := pagination(c, 20)
	blogs, err := h.Blogs.List(c.Request().Context(), visibleStatus(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	page := offset/limit + 1
	return c.JSON(http.StatusOK, echo.Map{
		"total": len(blogs), "page": page, "limit": limit, "blogs": blogs,
	})
}

// ListByAuthor handles GET /api/v1/blogs/author/:userId.
func (h *BlogHandler) ListByAuthor(c echo.Context) error {
	authorID, err := pathID(c, "userId")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	requester, _ := subjectID(c)

	// Authors see their own drafts; everyone else is status-filtered.
	status := visibleStatus(c)
	if requester == authorID {
		status = ""
	}
	limit, offset := pagination(c, 10)
	blogs, err := h.Blogs.ListByAuthor(c.Request().Context(), authorID, status, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	page := offset/limit + 1
	return c.JSON(http.StatusOK, echo.Map{
		"total": len(blogs), "page": page, "limit": limit, "blogs": blogs,
	})
}

// GetBySlug handles GET /api/v1/blogs/:slug. A draft is visible only
// to its author and to admins; others get 404 rather than 403 so the
// existence of the draft is not revealed.
func (h *BlogHandler) GetBySlug(c echo.Context) error {
	slug := c.Param("slug")
	blog, err := h.Blogs.GetBySlug(c.Request().Context(), slug)
	if err != nil {
		return respondError(c, err)
	}

	requester, _ := subjectID(c)
	if blog.Status == model.StatusDraft && blog.AuthorID != requester {
		if role, _ := middleware.Role(c); role != model.RoleAdmin {
			return notFound(c, "Blog not found")
		}
	}

	// View counter is best-effort; a failed bump never fails the read.
	if err := h.Blogs.IncrementViews(c.Request().Context(), blog.ID); err == nil {
		blog.ViewsCount++
	}
	return c.JSON(http.StatusOK, echo.Map{"blog": blog})
}

// Update handles PUT /api/v1/blogs/:blogId. Only the author or an
// admin may edit; the ownership check is per-resource policy on top of
// the role gate.
func (h *BlogHandler) Update(c echo.Context) error {
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return badRequest(c, "Invalid blog id")
	}
	userID, err := subjectID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req blogReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if msg := validateBlogReq(&req, false); msg != "" {
		return badRequest(c, msg)
	}

	ctx := c.Request().Context()
	blog, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		return respondError(c, err)
	}
	role, _ := middleware.Role(c)
	if blog.AuthorID != userID && role != model.RoleAdmin {
		return forbidden(c, "You can only edit your own blogs")
	}

	wasDraft := blog.Status == model.StatusDraft
	if req.Title != "" {
		blog.Title = req.Title
		blog.Slug = utils.Slugify(req.Title)
	}
	if strings.TrimSpace(req.Content) != "" {
		blog.Content = req.Content
	}
	if req.Status != "" {
		blog.Status = req.Status
	}
	if err := h.Blogs.Update(ctx, &blog); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, errorBody{
				Code: "Conflict", Message: "A blog with this title already exists"})
		}
		return respondError(c, err)
	}

	if wasDraft && blog.Status == model.StatusPublished {
		_ = publisher.PublishBlogPublished(ctx, publisher.BlogPublishedEvent{
			BlogID:      blog.ID,
			Slug:        blog.Slug,
			Title:       blog.Title,
			AuthorID:    blog.AuthorID,
			PublishedAt: blog.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	updated, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blog": updated})
}

// Delete handles DELETE /api/v1/blogs/:blogId with the same ownership
// policy as Update.
func (h *BlogHandler) Delete(c echo.Context) error {
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
	role, _ := middleware.Role(c)
	if blog.AuthorID != userID && role != model.RoleAdmin {
		return forbidden(c, "You can only delete your own blogs")
	}
	if err := h.Blogs.Delete(ctx, blogID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
