package services

import "errors"

// Failure taxonomy for all task lifecycle operations. Callers classify with
// errors.Is; reasons are attached at the call site via %w wrapping.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
)
