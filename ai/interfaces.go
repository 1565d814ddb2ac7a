package ai

import (
	"context"

	"github.com/clientpulse/kb/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SignalClassifier identifies risk and opportunity signals in text.
// Implementations must be thread-safe for concurrent use.
type SignalClassifier interface {
	// Classify analyzes text and returns the signal types it exhibits.
	// Returns an empty slice if the text carries no signal.
	// Returns an error if classification fails; callers are expected to
	// degrade gracefully rather than fail the surrounding operation.
	Classify(ctx context.Context, text string) ([]core.SignalType, error)
}

// Summarizer produces a short plain-text summary of a passage.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize returns a one or two sentence summary of the text.
	Summarize(ctx context.Context, text string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, SignalClassifier, and Summarizer
// instances, ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Classifier returns the signal classification service.
	// The returned SignalClassifier is safe for concurrent use.
	Classifier() SignalClassifier

	// Summarizer returns the summarization service.
	// The returned Summarizer is safe for concurrent use.
	Summarizer() Summarizer

	// EmbeddingModel returns the identifier of the model the Embedder uses.
	// Vectors produced under different model identifiers are never comparable.
	EmbeddingModel() string

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
