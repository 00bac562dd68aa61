package models

import "time"

// Like is unique per (user, post).
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_like_user_post"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_like_user_post"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeResult reports the outcome of a like or unlike together with the fresh count.
type LikeResult struct {
	Created    bool  `json:"created"`
	Removed    bool  `json:"removed"`
	LikesCount int64 `json:"likes_count"`
}
