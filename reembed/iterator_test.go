package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/storage"
	"github.com/clientpulse/kb/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupChunks(t *testing.T, n int) (storage.ChunkRepository, storage.EmbeddingRepository) {
	_, chunkRepo, embRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ctx := context.Background()
	docID := core.ID("fathom:call-7")
	for i := 0; i < n; i++ {
		text := fmt.Sprintf("chunk number %d", i)
		_, err := chunkRepo.UpsertChunks(ctx, &core.Chunk{
			Id:            core.ChunkIDFor(docID, i, text),
			DocumentId:    docID,
			Seq:           i,
			Text:          text,
			TokenEstimate: 3,
		})
		require.NoError(t, err)
	}

	return chunkRepo, embRepo
}

func TestChunkIterator_ForEach_Batches(t *testing.T) {
	chunkRepo, _ := setupChunks(t, 5)
	it := NewChunkIterator(chunkRepo, 2)

	var sizes []int
	seen := 0
	err := it.ForEach(context.Background(), func(batch []*core.Chunk) error {
		sizes = append(sizes, len(batch))
		seen += len(batch)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 5, seen)
	assert.Equal(t, []int{2, 2, 1}, sizes)
}

func TestChunkIterator_ForEach_EmptyIndex(t *testing.T) {
	chunkRepo, _ := setupChunks(t, 0)
	it := NewChunkIterator(chunkRepo, 10)

	calls := 0
	err := it.ForEach(context.Background(), func([]*core.Chunk) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestChunkIterator_ForEach_ErrorStopsIteration(t *testing.T) {
	chunkRepo, _ := setupChunks(t, 6)
	it := NewChunkIterator(chunkRepo, 2)

	sentinel := errors.New("stop here")
	calls := 0
	err := it.ForEach(context.Background(), func([]*core.Chunk) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestChunkIterator_InvalidBatchSizeDefaults(t *testing.T) {
	chunkRepo, _ := setupChunks(t, 3)
	it := NewChunkIterator(chunkRepo, 0)
	assert.Equal(t, DefaultBatchSize, it.batchSize)
}

func TestChunkIterator_Count(t *testing.T) {
	chunkRepo, _ := setupChunks(t, 7)
	it := NewChunkIterator(chunkRepo, 3)

	total, err := it.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}
