package mock

import (
	"context"
	"strings"

	"github.com/clientpulse/kb/core"
)

// MockClassifier is a test double for ai.SignalClassifier.
// It allows custom behavior injection via function fields.
type MockClassifier struct {
	// ClassifyFunc is called by Classify if set.
	// If nil, uses default keyword-sniffing behavior.
	ClassifyFunc func(ctx context.Context, text string) ([]core.SignalType, error)

	callCount int
}

// NewMockClassifier creates a mock classifier with default behavior.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Classify returns signal types based on crude keyword matching.
// Default behavior: "budget" implies a budget risk, "referral" a referral
// opportunity. Anything else yields no signals.
func (m *MockClassifier) Classify(ctx context.Context, text string) ([]core.SignalType, error) {
	m.callCount++

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text)
	}

	lowered := strings.ToLower(text)
	var signals []core.SignalType
	if strings.Contains(lowered, "budget") {
		signals = append(signals, core.SignalRiskBudget)
	}
	if strings.Contains(lowered, "referral") {
		signals = append(signals, core.SignalOpportunityReferral)
	}
	return signals, nil
}

// CallCount returns the number of times Classify was called.
func (m *MockClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockClassifier) Reset() {
	m.callCount = 0
	m.ClassifyFunc = nil
}
