package models

import "time"

// Follow is a directed edge: FollowerID sees FollowedID's posts in their feed.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_followed"`
	FollowedID uint      `json:"followed_id" gorm:"not null;index;uniqueIndex:idx_follower_followed;check:follower_id <> followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type FollowResult struct {
	Created bool `json:"created"`
}

type UnfollowResult struct {
	Removed bool `json:"removed"`
}
