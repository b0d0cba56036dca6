package badger

import (
	"context"
	"time"

	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/storage"
	"github.com/dgraph-io/badger/v4"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	return &DocumentRepository{
		backend: backend,
	}, nil
}

// Close releases resources. DocumentRepository has no resources to release.
func (r *DocumentRepository) Close() error {
	return nil
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, docID string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(docID))
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

// GetDocumentsByIDs retrieves multiple documents by their IDs.
// Missing IDs are skipped silently.
func (r *DocumentRepository) GetDocumentsByIDs(ctx context.Context, ids ...string) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetAllDocuments retrieves every document from storage, in key order.
func (r *DocumentRepository) GetAllDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var doc *core.Document
			err := item.Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	return results, err
}

// InsertDocumentIfAbsent persists a document only if its ID is not already
// present. Reports whether the document was inserted.
func (r *DocumentRepository) InsertDocumentIfAbsent(ctx context.Context, doc *core.Document) (bool, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return false, err
	}

	inserted := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readDocument(tx, makeDocumentKey(doc.DocID))
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		if err := writeDocument(tx, doc); err != nil {
			return err
		}
		inserted = true
		return tx.Commit()
	}, true)

	return inserted, err
}

// UpsertDocument persists a document, overwriting any existing document
// with the same ID. The URL index entry for a replaced URL is cleaned up.
func (r *DocumentRepository) UpsertDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readDocument(tx, makeDocumentKey(doc.DocID))
		if err != nil {
			return err
		}
		if existing != nil && existing.URL != doc.URL {
			if err := tx.Delete(makeURLKey(existing.URL)); err != nil {
				return err
			}
		}
		if err := writeDocument(tx, doc); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteDocument removes a document and its URL index entry.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, docID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(docID)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}
		if err := tx.Delete(makeURLKey(doc.URL)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CountDocuments returns the number of stored documents.
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Helper methods

// writeDocument stores the primary record and the URL index entry.
func writeDocument(tx *badger.Txn, doc *core.Document) error {
	if doc.FetchedAt.IsZero() {
		doc.FetchedAt = time.Now().UTC()
	}
	if err := tx.Set(makeDocumentKey(doc.DocID), storage.MarshalDocument(doc)); err != nil {
		return err
	}
	return tx.Set(makeURLKey(doc.URL), []byte(doc.DocID))
}

// readDocument reads a document from the transaction.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	return doc, err
}
