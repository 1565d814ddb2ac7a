package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/clientpulse/kb/ai"
	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/storage"
)

// embeddingProcessor generates and stores embeddings for chunks.
type embeddingProcessor struct {
	chunkRepository     storage.ChunkRepository
	embeddingRepository storage.EmbeddingRepository
	embedder            ai.Embedder
	model               string
	logger              *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(
	chunkRepository storage.ChunkRepository,
	embeddingRepository storage.EmbeddingRepository,
	embedder ai.Embedder,
	model string,
	logger *slog.Logger,
) (processor, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embeddingRepository == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if model == "" {
		return nil, fmt.Errorf("embedding model required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		chunkRepository:     chunkRepository,
		embeddingRepository: embeddingRepository,
		embedder:            embedder,
		model:               model,
		logger:              logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the specified chunks and stores the vectors under the
// processor's model identifier. Vectors are normalized before storage so
// dot product equals cosine similarity at query time.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing chunks for embeddings", "chunks", len(ids))

	slices.Sort(ids)

	chunks, err := ep.chunkRepository.GetChunks(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving chunks", "err", err)
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	ep.logger.Debug("generating embeddings for chunks", "chunks", len(texts), "model", ep.model)
	vectors, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(vectors))
	}

	for i, chunk := range chunks {
		_, err := ep.embeddingRepository.UpsertEmbedding(ctx, &core.EmbeddingVector{
			ChunkId: chunk.Id,
			Model:   ep.model,
			Vector:  core.NormalizeVector(vectors[i]),
		})
		if err != nil {
			return err
		}
	}

	return nil
}
