package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/blog-api/internal/auth"
	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/handler"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/model"
)

// Deps collects everything the route tree needs: the token codec for the
// authentication middleware, a role finder for the authorization gate, the
// handlers themselves and the optional Redis client for response caching.
type Deps struct {
	Codec    *auth.Codec
	Roles    middleware.RoleFinder
	CacheCfg config.CacheConfig
	Redis    *redis.Client

	Auth     *handler.AuthHandler
	Blogs    *handler.BlogHandler
	Comments *handler.CommentHandler
	Likes    *handler.LikeHandler
	Users    *handler.UserHandler
}

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI wires the versioned API under /api/v1. Authentication and
// authorization middleware are applied per group: the auth group is open
// except for logout, while every content group requires a valid access
// token and a role looked up from the user store on each request.
func RegisterAPI(e *echo.Echo, d Deps) {
	v1 := e.Group("/api/v1")

	authenticate := middleware.Authenticate(d.Codec)
	anyRole := middleware.RequireRole(d.Roles, model.RoleUser, model.RoleAdmin)
	adminOnly := middleware.RequireRole(d.Roles, model.RoleAdmin)

	// Session lifecycle. Refresh and logout operate on the refresh token
	// cookie; only logout also demands a live access token so that the
	// subject being logged out is known to be authenticated.
	ag := v1.Group("/auth")
	ag.POST("/register", d.Auth.Register)
	ag.POST("/login", d.Auth.Login)
	ag.POST("/refresh-token", d.Auth.Refresh)
	ag.POST("/logout", d.Auth.Logout, authenticate)

	blogs := v1.Group("/blogs", authenticate, anyRole)
	blogs.POST("", d.Blogs.Create)
	// The listing is filtered by the requester's role, so the cached copy
	// is keyed per role; the cache runs after RequireRole for that reason.
	blogs.GET("", d.Blogs.List, middleware.NewRedisCache(d.CacheCfg, d.Redis))
	blogs.GET("/author/:userId", d.Blogs.ListByAuthor)
	blogs.GET("/:slug", d.Blogs.GetBySlug)
	blogs.PUT("/:blogId", d.Blogs.Update)
	blogs.DELETE("/:blogId", d.Blogs.Delete)

	comments := v1.Group("/comments", authenticate, anyRole)
	comments.POST("/blog/:blogId", d.Comments.Create)
	comments.GET("/blog/:blogId", d.Comments.ListByBlog)
	comments.PUT("/:commentId", d.Comments.Update)
	comments.DELETE("/:commentId", d.Comments.Delete)

	likes := v1.Group("/likes", authenticate, anyRole)
	likes.POST("/blog/:blogId", d.Likes.Like)
	likes.DELETE("/blog/:blogId", d.Likes.Unlike)

	users := v1.Group("/users", authenticate)
	users.GET("/current", d.Users.Current, anyRole)
	users.PUT("/current", d.Users.UpdateCurrent, anyRole)
	users.DELETE("/current", d.Users.DeleteCurrent, anyRole)
	users.GET("", d.Users.List, adminOnly)
	users.GET("/:userId", d.Users.GetByID, adminOnly)
	users.DELETE("/:userId", d.Users.DeleteByID, adminOnly)
}
