package storage

import (
	"context"

	"github.com/clientpulse/kb/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing documents.
type DocumentRepository interface {
	Repository

	// UpsertDocuments writes one or more documents to storage.
	// Document IDs are content-derived, so re-ingesting the same source
	// overwrites in place. Preserves InsertedAt for existing documents and
	// sets UpdatedAt.
	// Returns the documents with timestamps populated.
	UpsertDocuments(ctx context.Context, documents ...*core.Document) ([]*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)
}

// ChunkRepository provides operations for managing chunks.
type ChunkRepository interface {
	Repository

	// UpsertChunks writes one or more chunks to storage and maintains the
	// document sequence index. Chunk IDs are content-derived, so re-ingesting
	// identical content overwrites in place. Preserves InsertedAt for
	// existing chunks and sets UpdatedAt.
	// Returns the chunks with timestamps populated.
	UpsertChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks of a document in sequence order.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// IterateChunks streams every stored chunk to fn in key order.
	// Iteration stops when fn returns an error, which is propagated.
	IterateChunks(ctx context.Context, fn func(chunk *core.Chunk) error) error

	// DeleteChunksByDocument removes all chunks of a document along with
	// their index entries. Missing documents are not an error.
	DeleteChunksByDocument(ctx context.Context, documentID core.ID) error
}

// EmbeddingRepository provides operations for managing embedding vectors.
// Vectors are keyed by (chunk, model); vectors produced under different
// model identifiers coexist and never shadow each other.
type EmbeddingRepository interface {
	Repository

	// UpsertEmbedding writes an embedding vector for a chunk under its model
	// identifier. Sets InsertedAt if not already set.
	UpsertEmbedding(ctx context.Context, embedding *core.EmbeddingVector) (*core.EmbeddingVector, error)

	// GetEmbedding retrieves the embedding of a chunk under the given model.
	// Returns ErrNotFound if no vector exists for that (chunk, model) pair.
	GetEmbedding(ctx context.Context, chunkID core.ID, model string) (*core.EmbeddingVector, error)

	// DeleteEmbeddings removes all embeddings of a chunk across every model.
	// Missing chunks are not an error.
	DeleteEmbeddings(ctx context.Context, chunkID core.ID) error
}
