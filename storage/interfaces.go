package storage

import (
	"context"

	"github.com/GaryOcean428/qsearch/core"
)

// DocumentRepository provides operations for managing crawled documents.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, docID string) (*core.Document, error)

	// GetDocumentsByIDs retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing IDs).
	GetDocumentsByIDs(ctx context.Context, ids ...string) ([]*core.Document, error)

	// GetAllDocuments retrieves every document in storage, in key order.
	GetAllDocuments(ctx context.Context) ([]*core.Document, error)

	// InsertDocumentIfAbsent persists a document only if no document with
	// the same ID exists. Reports whether the document was inserted.
	// This is the continuous learner's idempotent-skip policy.
	InsertDocumentIfAbsent(ctx context.Context, doc *core.Document) (bool, error)

	// UpsertDocument persists a document, overwriting any existing document
	// with the same ID. This is the crawl pipeline's overwrite policy.
	UpsertDocument(ctx context.Context, doc *core.Document) error

	// DeleteDocument removes a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, docID string) error

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
