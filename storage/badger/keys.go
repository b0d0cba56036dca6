package badger

import "fmt"

// Key prefixes for different data types
const (
	documentPrefix = "doc"
	urlIndexPrefix = "docurl"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(docID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, docID))
}

// makeURLKey generates a key for the unique-URL index.
// Format: prefix:url -> docID
func makeURLKey(url string) []byte {
	return []byte(fmt.Sprintf("%s:%s", urlIndexPrefix, url))
}
