package model

import "time"

// User represents a user in the system.
// PasswordHash is nil for accounts created through Google sign-in.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"size:80;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"size:120;not null;uniqueIndex"`
	PasswordHash *string   `json:"-" gorm:"size:255"` // Not exposed in API responses
	ProfilePhoto *string   `json:"profile_photo" gorm:"size:500"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserView is the public representation returned with a token.
type UserView struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	ProfilePhoto *string `json:"profile_photo"`
}

// ProfileView is returned by the current-user endpoint.
type ProfileView struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	ProfilePhoto *string `json:"profile_photo"`
}
