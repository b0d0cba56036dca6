package core

import "fmt"

// ValidateDocument checks that a document is well-formed for persistence.
// Returns a wrapped ErrInvalidDocument describing the first violation found.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return ErrInvalidDocument
	}
	if doc.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyURL)
	}
	if len(doc.DocID) != DocIDLen || !isHex(doc.DocID) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidDocument, ErrInvalidDocID, doc.DocID)
	}
	if len(doc.Basin) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingBasin)
	}
	if doc.Phi < 0 || doc.Phi > 1 {
		return fmt.Errorf("%w: %w: %g", ErrInvalidDocument, ErrPhiOutOfRange, doc.Phi)
	}
	return nil
}

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
