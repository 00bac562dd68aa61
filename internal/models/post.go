package models

import "time"

// Post belongs to its author. At least one of Content or MediaURL is non-blank.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:text"`
	MediaURL  string    `json:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostView is a post as seen by a viewer: author fields and engagement counts included.
type PostView struct {
	Post
	AuthorUsername string `json:"author_username"`
	LikesCount     int64  `json:"likes_count"`
	CommentsCount  int64  `json:"comments_count"`
	LikedByViewer  bool   `json:"liked_by_viewer"`
}

type CreatePostRequest struct {
	Content  string `json:"content" validate:"max=5000"`
	MediaURL string `json:"media_url" validate:"omitempty,url"`
}

type UpdatePostRequest struct {
	Content  *string `json:"content,omitempty" validate:"omitempty,max=5000"`
	MediaURL *string `json:"media_url,omitempty" validate:"omitempty,url"`
}
