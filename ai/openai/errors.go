package openai

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/clientpulse/kb/ai"
)

// wrapProviderErr classifies a transport failure into the ai error taxonomy
// so callers can branch with errors.Is.
func wrapProviderErr(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ai.ErrProviderTimeout, err)
	}
	return fmt.Errorf("%w: %w", ai.ErrProviderUnavailable, err)
}
