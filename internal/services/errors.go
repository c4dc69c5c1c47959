// internal/services/errors.go
package services

import "errors"

// Error taxonomy shared by all services. Handlers map these with errors.Is:
// ErrNotFound -> 404, ErrConflict -> 409, ErrValidation -> 400,
// ErrForbidden -> 403. ErrInvalidTransition is a 409 with the offending
// transition in the message.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)
