package badger

import (
	"context"
	"time"

	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/storage"
	"github.com/dgraph-io/badger/v4"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertEmbedding writes an embedding vector under its (chunk, model) key.
func (r *EmbeddingRepository) UpsertEmbedding(ctx context.Context, embedding *core.EmbeddingVector) (*core.EmbeddingVector, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := core.ValidateEmbedding(embedding); err != nil {
			return err
		}

		if embedding.InsertedAt.IsZero() {
			embedding.InsertedAt = time.Now().UTC()
		}

		key := makeEmbeddingKey(embedding.ChunkId, embedding.Model)
		if err := tx.Set(key, storage.MarshalEmbedding(embedding)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return embedding, err
}

// GetEmbedding retrieves the embedding of a chunk under the given model.
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, chunkID core.ID, model string) (*core.EmbeddingVector, error) {
	var result *core.EmbeddingVector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(chunkID, model))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalEmbedding(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// DeleteEmbeddings removes all embeddings of a chunk across every model.
func (r *EmbeddingRepository) DeleteEmbeddings(ctx context.Context, chunkID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialEmbeddingKey(chunkID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
