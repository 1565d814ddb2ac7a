package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/clientpulse/kb/ai"
	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/storage"
)

// BatchProcessor handles embedding generation for batches of chunks.
type BatchProcessor struct {
	repo           storage.EmbeddingRepository
	embedder       ai.Embedder
	model          string
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.EmbeddingRepository, embedder ai.Embedder, model string, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		model:          model,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of chunks and stores the vectors
// under the processor's model identifier. Vectors are normalized after
// embedding so dot product equals cosine similarity at query time.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	for i, chunk := range chunks {
		_, err := bp.repo.UpsertEmbedding(ctx, &core.EmbeddingVector{
			ChunkId: chunk.Id,
			Model:   bp.model,
			Vector:  core.NormalizeVector(embeddings[i]),
		})
		if err != nil {
			return fmt.Errorf("failed to store embedding: %w", err)
		}
	}

	return nil
}
