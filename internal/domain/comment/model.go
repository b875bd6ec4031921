package comment

import "time"

// Comment is a single comment on a video. Replies are populated only when
// a thread is assembled for display.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Replies   []Comment `json:"replies,omitempty"`
}

// CreateRequest carries a new comment.
type CreateRequest struct {
	Body     string `json:"body" binding:"required"`
	ParentID string `json:"parent_id"`
}
