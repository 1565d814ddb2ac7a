package mock

import (
	"context"
	"strings"
)

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, uses default truncation behavior.
	SummarizeFunc func(ctx context.Context, text string) (string, error)

	callCount int
}

// NewMockSummarizer creates a mock summarizer with default behavior.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize returns the first sentence-ish slice of the text.
func (m *MockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	m.callCount++

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text)
	}

	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, ".!?"); idx >= 0 {
		return text[:idx+1], nil
	}
	if len(text) > 100 {
		return text[:100], nil
	}
	return text, nil
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockSummarizer) Reset() {
	m.callCount = 0
	m.SummarizeFunc = nil
}
