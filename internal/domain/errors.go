package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the acting user lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned when input fails validation before any state change.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateEmail is returned when a signup reuses an existing email or username.
	ErrDuplicateEmail = errors.New("email or username already in use")
	// ErrInvalidCredentials is returned on login when the email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
