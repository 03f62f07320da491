package domain

import "errors"

// Sentinel errors shared across repositories and services. Handlers
// translate these into HTTP status codes at the boundary.
var (
	// ErrUserNotFound indicates no user matched the lookup.
	ErrUserNotFound = errors.New("User not found")
	// ErrItemNotFound indicates no item matched the lookup.
	ErrItemNotFound = errors.New("Item not found")
	// ErrEmailTaken is returned when registering with an email that is already in use.
	ErrEmailTaken = errors.New("User with this email already exist")
	// ErrNameTaken is returned when registering with a username that is already in use.
	ErrNameTaken = errors.New("User with this username already exist")
)
