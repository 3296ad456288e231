package auth

import "errors"

var (
	// ErrSessionNotFound is returned by session stores for unknown or expired ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTenantNotAssigned is returned when a hotel-role user has no hotel on record.
	ErrTenantNotAssigned = errors.New("tenant not assigned")
	// ErrInvalidCredentials is returned when the backend rejects an email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
