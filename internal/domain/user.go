package domain

import "time"

// DefaultAvatarURL is assigned to users that register without an avatar.
const DefaultAvatarURL = "/img/avatar-default.png"

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	ImageURL     string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy of the user with the password hash cleared,
// safe to hand to transport layers.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
