package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/storage"
)

func newDoc(url, text string) *core.Document {
	return &core.Document{
		DocID:     core.DocIDFromURL(url),
		URL:       url,
		Title:     "Title for " + url,
		Text:      text,
		Basin:     []float32{0.6, 0.8, 0, 0},
		Phi:       0.5,
		FetchedAt: time.Now().UTC(),
	}
}

func TestDocumentBasics(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	doc := newDoc("https://example.com/a", "some content")

	if err := repo.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("Failed to upsert document: %v", err)
	}

	got, err := repo.GetDocument(ctx, doc.DocID)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if got.URL != doc.URL || got.Title != doc.Title || got.Text != doc.Text {
		t.Errorf("Retrieved document does not match: got %+v", got)
	}
	if len(got.Basin) != len(doc.Basin) {
		t.Errorf("Basin length mismatch: got %d, want %d", len(got.Basin), len(doc.Basin))
	}

	count, err := repo.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to count documents: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 document, got %d", count)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	_, err = repo.GetDocument(context.Background(), "0000000000000000")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestInsertDocumentIfAbsent(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	doc := newDoc("https://example.com/b", "original content")

	inserted, err := repo.InsertDocumentIfAbsent(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to insert document: %v", err)
	}
	if !inserted {
		t.Error("Expected first insert to report true")
	}

	// A second insert with the same ID is skipped.
	updated := newDoc("https://example.com/b", "changed content")
	inserted, err = repo.InsertDocumentIfAbsent(ctx, updated)
	if err != nil {
		t.Fatalf("Failed on second insert: %v", err)
	}
	if inserted {
		t.Error("Expected second insert to report false")
	}

	got, err := repo.GetDocument(ctx, doc.DocID)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if got.Text != "original content" {
		t.Errorf("Expected original content to survive, got %q", got.Text)
	}
}

func TestUpsertDocumentOverwrites(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	doc := newDoc("https://example.com/c", "first version")
	if err := repo.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("Failed to upsert document: %v", err)
	}

	updated := newDoc("https://example.com/c", "second version")
	if err := repo.UpsertDocument(ctx, updated); err != nil {
		t.Fatalf("Failed to upsert updated document: %v", err)
	}

	got, err := repo.GetDocument(ctx, doc.DocID)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if got.Text != "second version" {
		t.Errorf("Expected overwritten content, got %q", got.Text)
	}

	count, err := repo.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to count documents: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 document after overwrite, got %d", count)
	}
}

func TestGetDocumentsByIDsSkipsMissing(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	a := newDoc("https://example.com/one", "content one")
	b := newDoc("https://example.com/two", "content two")
	for _, doc := range []*core.Document{a, b} {
		if err := repo.UpsertDocument(ctx, doc); err != nil {
			t.Fatalf("Failed to upsert document: %v", err)
		}
	}

	docs, err := repo.GetDocumentsByIDs(ctx, a.DocID, "ffffffffffffffff", b.DocID)
	if err != nil {
		t.Fatalf("Failed to get documents: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
}

func TestGetAllDocuments(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	urls := []string{
		"https://example.com/p1",
		"https://example.com/p2",
		"https://example.com/p3",
	}
	for _, u := range urls {
		if err := repo.UpsertDocument(ctx, newDoc(u, "content for "+u)); err != nil {
			t.Fatalf("Failed to upsert document: %v", err)
		}
	}

	docs, err := repo.GetAllDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to get all documents: %v", err)
	}
	if len(docs) != len(urls) {
		t.Fatalf("Expected %d documents, got %d", len(urls), len(docs))
	}
}

func TestDeleteDocument(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	doc := newDoc("https://example.com/d", "to be deleted")
	if err := repo.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("Failed to upsert document: %v", err)
	}

	if err := repo.DeleteDocument(ctx, doc.DocID); err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}

	_, err = repo.GetDocument(ctx, doc.DocID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.DeleteDocument(ctx, doc.DocID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestUpsertInvalidDocument(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	doc := newDoc("https://example.com/e", "content")
	doc.Basin = nil

	if err := repo.UpsertDocument(context.Background(), doc); !errors.Is(err, core.ErrMissingBasin) {
		t.Errorf("Expected ErrMissingBasin, got %v", err)
	}
}
