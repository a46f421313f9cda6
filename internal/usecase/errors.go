package usecase

import "errors"

// Sentinel errors the transport layer maps to HTTP statuses. Services wrap
// them with fmt.Errorf("%w: ...") so callers can test with errors.Is while
// logs keep the detail.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
