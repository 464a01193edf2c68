package model

import "time"

// Like represents a row in the `likes` table. The (blog_id, user_id)
// pair is unique: a user can like a blog at most once.
type Like struct {
	ID        uint64    `json:"id"`
	BlogID    uint64    `json:"blogId"`
	UserID    uint64    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
