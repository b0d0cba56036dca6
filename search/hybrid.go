package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/GaryOcean428/qsearch/basin"
	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/fetch"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultMaxFetch     = 10
	defaultMaxTextLen   = 5000
	defaultExcerptLen   = 500
	defaultFetchWorkers = 8
)

// HybridOrchestrator combines external web search with basin re-ranking.
//
// Flow: query the web provider, fetch page content for each result (or use
// the snippet when content fetching is disabled), encode to basin vectors,
// and blend the provider rank with the basin distance into one score.
type HybridOrchestrator struct {
	provider     WebProvider
	fetcher      fetch.Fetcher
	pool         *ants.Pool
	fetchContent bool
	maxFetch     int
	maxTextLen   int
	excerptLen   int
	dim          int
	country      string
	language     string
	logger       *slog.Logger
}

// HybridOption configures a HybridOrchestrator.
type HybridOption func(*HybridOrchestrator) error

// WithFetchContent toggles page-content fetching. When disabled, provider
// snippets are encoded instead. Default is true.
func WithFetchContent(on bool) HybridOption {
	return func(h *HybridOrchestrator) error {
		h.fetchContent = on
		return nil
	}
}

// WithMaxFetch sets how many provider results are requested and fetched.
// Default is 10.
func WithMaxFetch(n int) HybridOption {
	return func(h *HybridOrchestrator) error {
		if n > 0 {
			h.maxFetch = n
		}
		return nil
	}
}

// WithFetchWorkers bounds the concurrent content fetches. Default is 8.
func WithFetchWorkers(n int) HybridOption {
	return func(h *HybridOrchestrator) error {
		if n < 1 {
			n = 1
		}
		if h.pool != nil {
			h.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		h.pool = pool
		return nil
	}
}

// WithHybridDim sets the basin vector dimension. Default is basin.Dim.
func WithHybridDim(dim int) HybridOption {
	return func(h *HybridOrchestrator) error {
		if dim > 0 {
			h.dim = dim
		}
		return nil
	}
}

// WithTextCaps sets the stored-text and excerpt caps in characters.
func WithTextCaps(maxText, excerpt int) HybridOption {
	return func(h *HybridOrchestrator) error {
		if maxText > 0 {
			h.maxTextLen = maxText
		}
		if excerpt > 0 {
			h.excerptLen = excerpt
		}
		return nil
	}
}

// WithLocale sets the provider country and language codes. Default "us"/"en".
func WithLocale(country, language string) HybridOption {
	return func(h *HybridOrchestrator) error {
		if country != "" {
			h.country = country
		}
		if language != "" {
			h.language = language
		}
		return nil
	}
}

// WithHybridLogger sets a custom logger. Default is slog.Default().
func WithHybridLogger(logger *slog.Logger) HybridOption {
	return func(h *HybridOrchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

// NewHybridOrchestrator creates a hybrid search orchestrator.
func NewHybridOrchestrator(provider WebProvider, fetcher fetch.Fetcher, opts ...HybridOption) (*HybridOrchestrator, error) {
	if provider == nil {
		return nil, ErrWebProviderRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	pool, err := ants.NewPool(defaultFetchWorkers)
	if err != nil {
		return nil, err
	}

	h := &HybridOrchestrator{
		provider:     provider,
		fetcher:      fetcher,
		pool:         pool,
		fetchContent: true,
		maxFetch:     defaultMaxFetch,
		maxTextLen:   defaultMaxTextLen,
		excerptLen:   defaultExcerptLen,
		dim:          basin.Dim,
		country:      "us",
		language:     "en",
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(h); optErr != nil {
			h.Release()
			return nil, optErr
		}
	}
	return h, nil
}

// Release frees the fetch worker pool.
// The orchestrator should not be used after calling Release.
func (h *HybridOrchestrator) Release() {
	if h.pool != nil {
		h.pool.Release()
	}
}

// Search performs a hybrid search. alpha blends the two rankings: 0 is pure
// basin geometry, 1 is pure provider order. Results are sorted ascending by
// the blended score (lower is better) and truncated to limit.
//
// An empty provider response yields an empty result, not an error, and a
// failed page fetch falls back to encoding the provider snippet, so every
// provider result produces exactly one hybrid result.
func (h *HybridOrchestrator) Search(ctx context.Context, query string, limit int, alpha float64) ([]core.HybridResult, error) {
	if alpha < 0 || alpha > 1 || math.IsNaN(alpha) {
		return nil, ErrInvalidAlpha
	}

	resp := h.provider.Search(ctx, query, h.maxFetch, h.country, h.language)
	if len(resp.Results) == 0 {
		h.logger.Info("no web results", "query", query)
		return []core.HybridResult{}, nil
	}

	queryBasin := basin.Encode(query, h.dim)

	webResults := resp.Results
	if len(webResults) > h.maxFetch {
		webResults = webResults[:h.maxFetch]
	}

	results := make([]core.HybridResult, len(webResults))
	var wg sync.WaitGroup
	for i, r := range webResults {
		wg.Add(1)
		submitErr := h.pool.Submit(func() {
			defer wg.Done()
			results[i] = h.fetchAndEncode(ctx, r, queryBasin)
		})
		if submitErr != nil {
			// Pool unavailable; do the work inline rather than drop the result.
			results[i] = h.fetchAndEncode(ctx, r, queryBasin)
			wg.Done()
		}
	}
	wg.Wait()

	scoreResults(results, alpha)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].HybridScore < results[j].HybridScore
	})
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// fetchAndEncode produces the hybrid result for one web result. It never
// fails: any fetch or parse problem falls back to the provider snippet.
func (h *HybridOrchestrator) fetchAndEncode(ctx context.Context, r WebResult, queryBasin []float32) core.HybridResult {
	if h.fetchContent {
		if body, err := h.fetcher.Fetch(ctx, r.URL); err == nil {
			if _, text, exErr := fetch.ExtractText(body); exErr == nil && text != "" {
				text = truncate(text, h.maxTextLen)
				contentBasin := basin.Encode(text, h.dim)
				return core.HybridResult{
					URL:           r.URL,
					Title:         r.Title,
					Snippet:       r.Snippet,
					Content:       truncate(text, h.excerptLen),
					Position:      r.Position,
					BasinDistance: basin.Distance(queryBasin, contentBasin),
				}
			}
		} else {
			h.logger.Debug("content fetch failed, using snippet", "url", r.URL, "err", err)
		}
	}

	snippetBasin := basin.Encode(r.Snippet, h.dim)
	return core.HybridResult{
		URL:           r.URL,
		Title:         r.Title,
		Snippet:       r.Snippet,
		Content:       r.Snippet,
		Position:      r.Position,
		BasinDistance: basin.Distance(queryBasin, snippetBasin),
	}
}

// scoreResults normalizes both ranking inputs to [0,1] across the batch and
// blends them in place: alpha*posScore + (1-alpha)*distScore.
func scoreResults(results []core.HybridResult, alpha float64) {
	maxPos := 0
	maxDist := 0.0
	for _, r := range results {
		if r.Position > maxPos {
			maxPos = r.Position
		}
		if !math.IsInf(r.BasinDistance, 1) && r.BasinDistance > maxDist {
			maxDist = r.BasinDistance
		}
	}
	if maxPos == 0 {
		maxPos = 1
	}
	if maxDist == 0 {
		maxDist = 1
	}

	for i := range results {
		posScore := float64(results[i].Position) / float64(maxPos)
		distScore := results[i].BasinDistance / maxDist
		if math.IsInf(results[i].BasinDistance, 1) {
			// Zero-norm content has no meaningful distance; rank it last.
			distScore = 1
		}
		results[i].HybridScore = alpha*posScore + (1-alpha)*distScore
	}
}
