// Package search composes the encoder, the basin index and the document
// store into ranked local search, and blends external web results with
// basin geometry into hybrid search.
package search

import (
	"context"
	"log/slog"

	"github.com/GaryOcean428/qsearch/basin"
	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/index"
	"github.com/GaryOcean428/qsearch/storage"
)

const defaultSnippetLen = 220

// Orchestrator runs local searches over the document store.
type Orchestrator struct {
	repo       storage.DocumentRepository
	index      *index.BasinIndex
	dim        int
	snippetLen int
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithDim sets the basin vector dimension. Default is basin.Dim.
func WithDim(dim int) Option {
	return func(o *Orchestrator) error {
		if dim > 0 {
			o.dim = dim
		}
		return nil
	}
}

// WithSnippetLen sets the snippet length in characters. Default is 220.
func WithSnippetLen(n int) Option {
	return func(o *Orchestrator) error {
		if n > 0 {
			o.snippetLen = n
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a local search orchestrator.
func NewOrchestrator(repo storage.DocumentRepository, opts ...Option) (*Orchestrator, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	ix, err := index.NewBasinIndex(repo)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		repo:       repo,
		index:      ix,
		dim:        basin.Dim,
		snippetLen: defaultSnippetLen,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Search encodes the query, ranks stored documents by basin distance and
// hydrates the top hits with display fields. Documents that disappear
// between ranking and hydration are skipped, not errors.
func (o *Orchestrator) Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	queryBasin := basin.Encode(query, o.dim)

	hits, err := o.index.Search(ctx, queryBasin, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []core.SearchResult{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.DocID
	}

	docs, err := o.repo.GetDocumentsByIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*core.Document, len(docs))
	for _, d := range docs {
		byID[d.DocID] = d
	}

	out := make([]core.SearchResult, 0, len(hits))
	for _, h := range hits {
		d := byID[h.DocID]
		if d == nil {
			continue
		}
		out = append(out, core.SearchResult{
			DocID:    d.DocID,
			URL:      d.URL,
			Title:    d.Title,
			Snippet:  truncate(d.Text, o.snippetLen),
			Distance: h.Distance,
		})
	}
	return out, nil
}

// truncate cuts s to at most n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
