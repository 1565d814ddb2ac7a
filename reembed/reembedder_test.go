package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clientpulse/kb/ai/mock"
	"github.com/clientpulse/kb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "test-embedding-v2"

func testReembedConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestNewReembedder_EmptyModel(t *testing.T) {
	chunkRepo, embRepo := setupChunks(t, 0)
	_, err := NewReembedder(chunkRepo, embRepo, mock.NewMockEmbedder(), "", nil, &bytes.Buffer{})
	assert.Equal(t, ErrEmptyModel, err)
}

func TestReembedder_Run_EmptyIndex(t *testing.T) {
	chunkRepo, embRepo := setupChunks(t, 0)

	var buf bytes.Buffer
	r, err := NewReembedder(chunkRepo, embRepo, mock.NewMockEmbedder(), testModel, testReembedConfig(), &buf)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, buf.String(), "No chunks found")
}

func TestReembedder_Run_EmbedsMissingOnly(t *testing.T) {
	chunkRepo, embRepo := setupChunks(t, 5)
	ctx := context.Background()

	// Pre-embed two chunks under the target model
	var pre []core.ID
	err := chunkRepo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		if len(pre) < 2 {
			pre = append(pre, chunk.Id)
			_, err := embRepo.UpsertEmbedding(ctx, &core.EmbeddingVector{
				ChunkId: chunk.Id,
				Model:   testModel,
				Vector:  []float32{1, 0},
			})
			return err
		}
		return nil
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	r, err := NewReembedder(chunkRepo, embRepo, mock.NewMockEmbedder(), testModel, testReembedConfig(), &buf)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	assert.Contains(t, buf.String(), "Embedded 3 of 5 chunks")

	// Every chunk now carries a vector for the target model
	err = chunkRepo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		_, err := embRepo.GetEmbedding(ctx, chunk.Id, testModel)
		return err
	})
	require.NoError(t, err)

	// The pre-embedded vectors were left alone
	emb, err := embRepo.GetEmbedding(ctx, pre[0], testModel)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, emb.Vector)
}

func TestReembedder_Run_AllOverwrites(t *testing.T) {
	chunkRepo, embRepo := setupChunks(t, 3)
	ctx := context.Background()

	var first core.ID
	err := chunkRepo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		if first == "" {
			first = chunk.Id
			_, err := embRepo.UpsertEmbedding(ctx, &core.EmbeddingVector{
				ChunkId: chunk.Id,
				Model:   testModel,
				Vector:  []float32{1, 0},
			})
			return err
		}
		return nil
	})
	require.NoError(t, err)

	config := testReembedConfig()
	config.All = true

	var buf bytes.Buffer
	r, err := NewReembedder(chunkRepo, embRepo, mock.NewMockEmbedder(), testModel, config, &buf)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	assert.Contains(t, buf.String(), "Embedded 3 of 3 chunks")

	emb, err := embRepo.GetEmbedding(ctx, first, testModel)
	require.NoError(t, err)
	assert.NotEqual(t, []float32{1, 0}, emb.Vector, "vector replaced by the sweep")
}

func TestReembedder_Run_NormalizesVectors(t *testing.T) {
	chunkRepo, embRepo := setupChunks(t, 1)
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{3, 4}
		}
		return out, nil
	}

	r, err := NewReembedder(chunkRepo, embRepo, embedder, testModel, testReembedConfig(), &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	err = chunkRepo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		emb, err := embRepo.GetEmbedding(ctx, chunk.Id, testModel)
		if err != nil {
			return err
		}
		assert.InDelta(t, 0.6, emb.Vector[0], 1e-6)
		assert.InDelta(t, 0.8, emb.Vector[1], 1e-6)
		return nil
	})
	require.NoError(t, err)
}

func TestReembedder_Run_EmbedderFailurePropagates(t *testing.T) {
	chunkRepo, embRepo := setupChunks(t, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}

	r, err := NewReembedder(chunkRepo, embRepo, embedder, testModel, testReembedConfig(), &bytes.Buffer{})
	require.NoError(t, err)

	err = r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
	assert.Equal(t, 2, embedder.CallCount(), "retried before giving up")
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	_, embRepo := setupChunks(t, 0)
	bp := NewBatchProcessor(embRepo, mock.NewMockEmbedder(), testModel, 1, time.Millisecond)
	assert.NoError(t, bp.Process(context.Background(), nil))
}
