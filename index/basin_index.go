// Package index ranks stored documents by geometric distance to a query
// basin vector.
package index

import (
	"context"
	"errors"
	"sort"

	"github.com/GaryOcean428/qsearch/basin"
	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/storage"
)

// ErrRepositoryRequired is returned when a document repository is not provided.
var ErrRepositoryRequired = errors.New("document repository required")

// BasinIndex ranks every stored document by basin distance to a query.
//
// This is a brute-force scan: the full document set is loaded per query and
// no spatial structure is maintained. O(N) per query, acceptable only while
// the store is small.
type BasinIndex struct {
	repo storage.DocumentRepository
}

// NewBasinIndex creates a basin index over the given repository.
func NewBasinIndex(repo storage.DocumentRepository) (*BasinIndex, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	return &BasinIndex{repo: repo}, nil
}

// Search returns up to limit hits ordered by ascending distance to the
// query basin. Ties keep storage order (stable sort).
func (ix *BasinIndex) Search(ctx context.Context, queryBasin []float32, limit int) ([]core.SearchHit, error) {
	docs, err := ix.repo.GetAllDocuments(ctx)
	if err != nil {
		return nil, err
	}

	hits := make([]core.SearchHit, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, core.SearchHit{
			DocID:    doc.DocID,
			Distance: basin.Distance(queryBasin, doc.Basin),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
