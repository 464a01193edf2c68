package queue

// BlogQueueName is the durable queue carrying blog publication events.
const BlogQueueName = "blog.published"

// BlogPublishedEvent is emitted when a blog first transitions from
// draft to published. Consumers use it for notification fan-out and
// publication audit logs.
type BlogPublishedEvent struct {
	BlogID      uint64 `json:"blog_id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	AuthorID    uint64 `json:"author_id"`
	PublishedAt string `json:"published_at"`
}
