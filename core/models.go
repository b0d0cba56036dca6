package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DocIDLen is the length of a document identifier in hex characters.
const DocIDLen = 16

// DocIDFromURL derives a stable document identifier from a URL using
// BLAKE2b content hashing. Identical URLs always produce identical IDs.
func DocIDFromURL(url string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 16 hex chars
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// Document is a crawled page persisted in the document store.
// The basin vector is computed once at index time from the extracted text.
type Document struct {
	DocID     string
	URL       string
	Title     string
	Text      string    // extracted content, truncated at storage time
	Basin     []float32 // L2-normalized basin vector (or all zeros for empty text)
	Phi       float64   // integration score of the basin, in [0, 1]
	FetchedAt time.Time
}

// SearchHit is a single ranked match from the basin index.
// Lower distance means more similar.
type SearchHit struct {
	DocID    string
	Distance float64
}

// SearchResult is a hydrated local search hit with display fields.
type SearchResult struct {
	DocID    string
	URL      string
	Title    string
	Snippet  string
	Distance float64
}

// HybridResult is a web search result re-ranked by basin geometry.
// HybridScore blends the provider rank with the basin distance; lower is better.
type HybridResult struct {
	URL           string
	Title         string
	Snippet       string
	Content       string // fetched content excerpt
	Position      int    // 1-based rank from the web search provider
	BasinDistance float64
	HybridScore   float64
}

// CrawlTask is a unit of crawl work owned by the continuous learner's queue.
type CrawlTask struct {
	URL       string
	Priority  int // higher = more urgent
	Source    string
	CreatedAt time.Time
}

// LearningStats is a point-in-time snapshot of the continuous learner.
type LearningStats struct {
	URLsQueued     int64
	URLsCrawled    int64
	URLsFailed     int64
	DocumentsAdded int64
	QueueSize      int
	LastCrawlTime  time.Time
	Running        bool
}
