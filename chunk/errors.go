package chunk

import "errors"

var (
	// ErrInvalidBudget is returned for an unusable target/overlap combination.
	ErrInvalidBudget = errors.New("invalid chunking budget")
)
