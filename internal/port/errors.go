package port

import "errors"

// Sentinel errors used across ports. Services wrap these with context via
// fmt.Errorf("...: %w", err); the HTTP layer maps them to status codes.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("already exists")
	ErrInvalid         = errors.New("invalid input")
	ErrSerialization   = errors.New("content not serializable")
	ErrVersionConflict = errors.New("version number conflict")
)
