package model

import "time"

// Blog status values. Drafts are visible to their author and to admins
// only; readers with the "user" role see published blogs.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Blog represents a row in the `blogs` table. The slug is derived from
// the title at creation time and is unique across all blogs. Counter
// columns are denormalized and maintained by the comment and like
// repositories.
type Blog struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	AuthorID      uint64    `json:"authorId"`
	ViewsCount    uint64    `json:"viewsCount"`
	LikesCount    uint64    `json:"likesCount"`
	CommentsCount uint64    `json:"commentsCount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
