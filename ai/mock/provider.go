// Copyright 2025 ClientPulse Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/clientpulse/kb/ai"

// EmbeddingModelName is the model identifier mock providers report.
const EmbeddingModelName = "mock-embedding"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder, classifier, and summarizer instances.
type MockProvider struct {
	embedder   *MockEmbedder
	classifier *MockClassifier
	summarizer *MockSummarizer
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockClassifier()/GetMockSummarizer() to access
// concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:   NewMockEmbedder(),
		classifier: NewMockClassifier(),
		summarizer: NewMockSummarizer(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, classifier *MockClassifier, summarizer *MockSummarizer) ai.AIProvider {
	return &MockProvider{
		embedder:   embedder,
		classifier: classifier,
		summarizer: summarizer,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Classifier returns the mock signal classifier.
func (p *MockProvider) Classifier() ai.SignalClassifier {
	return p.classifier
}

// Summarizer returns the mock summarizer.
func (p *MockProvider) Summarizer() ai.Summarizer {
	return p.summarizer
}

// EmbeddingModel returns the fixed mock model identifier.
func (p *MockProvider) EmbeddingModel() string {
	return EmbeddingModelName
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockClassifier returns the underlying mock classifier for test assertions.
func (p *MockProvider) GetMockClassifier() *MockClassifier {
	return p.classifier
}

// GetMockSummarizer returns the underlying mock summarizer for test assertions.
func (p *MockProvider) GetMockSummarizer() *MockSummarizer {
	return p.summarizer
}
