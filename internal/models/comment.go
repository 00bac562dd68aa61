package models

import "time"

// Comment on a post. Comments are append-only.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentView is a comment with its author's username.
type CommentView struct {
	Comment
	Username string `json:"username"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}
