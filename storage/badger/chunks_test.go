package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/storage"
)

func testChunk(docID core.ID, seq int, text string) *core.Chunk {
	return &core.Chunk{
		Id:            core.ChunkIDFor(docID, seq, text),
		DocumentId:    docID,
		Seq:           seq,
		Speaker:       "alice",
		Text:          text,
		TokenEstimate: 1,
	}
}

func TestChunkBasics(t *testing.T) {
	_, chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunk := testChunk("fathom:call-1", 0, "we might go over budget")
	added, err := chunkRepo.UpsertChunks(ctx, chunk)
	if err != nil {
		t.Fatalf("Failed to upsert chunk: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(added))
	}
	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := chunkRepo.GetChunk(ctx, chunk.Id)
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}
	if retrieved.Text != "we might go over budget" {
		t.Fatalf("Unexpected text: %q", retrieved.Text)
	}

	_, err = chunkRepo.GetChunk(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestChunkUpsertPreservesInsertedAt(t *testing.T) {
	_, chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunk := testChunk("fathom:call-1", 0, "hello world")
	if _, err := chunkRepo.UpsertChunks(ctx, chunk); err != nil {
		t.Fatalf("Failed to upsert chunk: %v", err)
	}
	first := chunk.InsertedAt

	again := testChunk("fathom:call-1", 0, "hello world")
	if _, err := chunkRepo.UpsertChunks(ctx, again); err != nil {
		t.Fatalf("Failed to upsert chunk again: %v", err)
	}

	if !again.InsertedAt.Equal(first) {
		t.Fatalf("Expected InsertedAt %v to be preserved, got %v", first, again.InsertedAt)
	}
	if again.UpdatedAt.Before(first) {
		t.Fatal("Expected UpdatedAt to advance")
	}
}

func TestChunksByDocumentOrder(t *testing.T) {
	_, chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	// Upsert out of sequence order
	chunks := []*core.Chunk{
		testChunk("fathom:call-1", 2, "third"),
		testChunk("fathom:call-1", 0, "first"),
		testChunk("fathom:call-1", 1, "second"),
		testChunk("fathom:call-2", 0, "other document"),
	}
	if _, err := chunkRepo.UpsertChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to upsert chunks: %v", err)
	}

	got, err := chunkRepo.GetChunksByDocument(ctx, "fathom:call-1")
	if err != nil {
		t.Fatalf("Failed to get chunks by document: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(got))
	}
	for i, chunk := range got {
		if chunk.Seq != i {
			t.Fatalf("Expected seq %d at position %d, got %d", i, i, chunk.Seq)
		}
	}
}

func TestIterateChunks(t *testing.T) {
	_, chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunks := []*core.Chunk{
		testChunk("doc:a", 0, "alpha"),
		testChunk("doc:b", 0, "beta"),
		testChunk("doc:c", 0, "gamma"),
	}
	if _, err := chunkRepo.UpsertChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to upsert chunks: %v", err)
	}

	count := 0
	err = chunkRepo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("IterateChunks failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 chunks, got %d", count)
	}

	// Errors from fn stop iteration and propagate
	sentinel := errors.New("stop")
	err = chunkRepo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Expected sentinel error, got %v", err)
	}
}

func TestDeleteChunksByDocument(t *testing.T) {
	_, chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunks := []*core.Chunk{
		testChunk("doc:a", 0, "alpha"),
		testChunk("doc:a", 1, "beta"),
		testChunk("doc:b", 0, "gamma"),
	}
	if _, err := chunkRepo.UpsertChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to upsert chunks: %v", err)
	}

	if err := chunkRepo.DeleteChunksByDocument(ctx, "doc:a"); err != nil {
		t.Fatalf("Failed to delete chunks: %v", err)
	}

	got, err := chunkRepo.GetChunksByDocument(ctx, "doc:a")
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Expected 0 chunks after delete, got %d", len(got))
	}

	remaining, err := chunkRepo.GetChunksByDocument(ctx, "doc:b")
	if err != nil {
		t.Fatalf("Failed to get remaining chunks: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("Expected doc:b chunks untouched, got %d", len(remaining))
	}

	// Deleting a missing document is not an error
	if err := chunkRepo.DeleteChunksByDocument(ctx, "doc:missing"); err != nil {
		t.Fatalf("Expected no error for missing document, got %v", err)
	}
}
