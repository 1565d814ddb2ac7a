package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmptyModel is returned when no target embedding model is given.
	ErrEmptyModel = errors.New("target embedding model required")
)
