package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/clientpulse/kb/ai"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestWrapProviderErr(t *testing.T) {
	t.Run("deadline exceeded maps to timeout", func(t *testing.T) {
		err := wrapProviderErr(context.DeadlineExceeded)
		assert.ErrorIs(t, err, ai.ErrProviderTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, ai.ErrProviderUnavailable)
	})

	t.Run("network timeout maps to timeout", func(t *testing.T) {
		err := wrapProviderErr(timeoutErr{})
		assert.ErrorIs(t, err, ai.ErrProviderTimeout)
	})

	t.Run("other transport errors map to unavailable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := wrapProviderErr(cause)
		assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ai.ErrProviderTimeout)
	})
}
