package models

import "time"

// User is an account in the identity store. Every other table references it by ID.
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Username          string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email             string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	FirstName         string    `json:"first_name" gorm:"size:150"`
	LastName          string    `json:"last_name" gorm:"size:150"`
	Bio               string    `json:"bio" gorm:"size:500"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	Password          string    `json:"-"`                                     // bcrypt hash
	FirebaseUID       *string   `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // nil for local accounts
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UserSummary is the public view of a user, as returned by follow listings and profiles.
type UserSummary struct {
	ID                uint   `json:"id"`
	Username          string `json:"username"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Bio               string `json:"bio"`
	ProfilePictureURL string `json:"profile_picture_url"`
	FollowersCount    int64  `json:"followers_count"`
	FollowingCount    int64  `json:"following_count"`
}

// ProfileView is a user's public profile as seen by another user.
type ProfileView struct {
	UserSummary
	IsFollowing bool `json:"is_following"`
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest carries a Firebase ID token obtained by the client.
type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName          *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Bio               *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty" validate:"omitempty,url"`
}
