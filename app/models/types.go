package models

import "time"

// Comment is a note left on a task.
type Comment struct {
	ID        int       `json:"id"`
	TaskID    int       `json:"task_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentPatch carries the fields of an update. A nil field is left unchanged.
type CommentPatch struct {
	Author  *string
	Content *string
}

// CommentFilter narrows a listing. A nil TaskID matches every comment.
type CommentFilter struct {
	TaskID *int
}

// CreateCommentRequest is the body of POST /comments.
// A nil pointer means the key was missing or null.
type CreateCommentRequest struct {
	TaskID  *int    `json:"task_id" validate:"required"`
	Author  *string `json:"author" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

// UpdateCommentRequest is the body of PUT/PATCH /comments/{id}.
type UpdateCommentRequest struct {
	Author  OptionalString `json:"author"`
	Content OptionalString `json:"content"`
}
