package ai

import "errors"

var (
	// ErrProviderUnavailable indicates the backing AI service could not be reached.
	ErrProviderUnavailable = errors.New("ai provider unavailable")

	// ErrProviderTimeout indicates a call to the backing AI service timed out.
	ErrProviderTimeout = errors.New("ai provider timeout")

	// ErrMalformedResponse indicates the backing AI service returned output
	// that could not be parsed after retries.
	ErrMalformedResponse = errors.New("malformed ai response")
)
