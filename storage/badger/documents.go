package badger

import (
	"context"
	"time"

	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/storage"
	"github.com/dgraph-io/badger/v4"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) *DocumentRepository {
	return &DocumentRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *DocumentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertDocuments writes one or more documents to storage.
// Existing documents keep their InsertedAt timestamp.
func (r *DocumentRepository) UpsertDocuments(ctx context.Context, documents ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, document := range documents {
			if err := core.ValidateDocument(document); err != nil {
				return err
			}

			key := makeDocumentKey(document.Id)
			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}

			if old != nil {
				document.InsertedAt = old.InsertedAt
			} else {
				document.InsertedAt = now
			}
			document.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalDocument(document)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return documents, err
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			document, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if document != nil {
				result = append(result, document)
			}
		}
		return nil
	}, false)
	return result, err
}

// readDocument reads a document from the transaction.
// Returns nil without error when the key does not exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var document *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		document, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return document, err
}
