package model

import "time"

// Comment represents a row in the `comments` table. Each comment
// belongs to one blog and one user; the blog's comments_count column
// is kept in step by the comment repository.
type Comment struct {
	ID        uint64    `json:"id"`
	BlogID    uint64    `json:"blogId"`
	UserID    uint64    `json:"userId"`
	Content   string    `json:"content"`
	Username  string    `json:"username,omitempty"` // joined from users for responses
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
