// Copyright 2025 QSearch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package qsearch is a basin geometry search engine: documents are encoded
// into fixed-dimension basin vectors, ranked by angular distance, and
// continuously enriched by a background learner that crawls URLs discovered
// during hybrid web searches.
package qsearch

import (
	"context"
	"log/slog"

	"github.com/GaryOcean428/qsearch/config"
	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/crawler"
	"github.com/GaryOcean428/qsearch/fetch"
	"github.com/GaryOcean428/qsearch/learner"
	"github.com/GaryOcean428/qsearch/search"
	"github.com/GaryOcean428/qsearch/storage"
	"github.com/GaryOcean428/qsearch/storage/badger"
)

// Engine wires the document store, the search orchestrators, the seed
// crawler and the continuous learner into one facade.
type Engine struct {
	cfg     config.Config
	backend *badger.Backend
	repo    storage.DocumentRepository
	local   *search.Orchestrator
	hybrid  *search.HybridOrchestrator
	learner *learner.Learner
	crawler *crawler.Crawler
	cache   *search.Cache
	logger  *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	inMemory bool
	logger   *slog.Logger
	provider search.WebProvider
	fetcher  fetch.Fetcher
}

// WithInMemory opens the document store in memory instead of on disk.
// Used in tests.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithEngineLogger sets a custom logger. Default is slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWebProvider overrides the web search provider. Default is a
// Serper client built from the configured API key.
func WithWebProvider(p search.WebProvider) EngineOption {
	return func(o *engineOptions) {
		if p != nil {
			o.provider = p
		}
	}
}

// WithFetcher overrides the page fetcher shared by hybrid search, the
// learner and the crawler.
func WithFetcher(f fetch.Fetcher) EngineOption {
	return func(o *engineOptions) {
		if f != nil {
			o.fetcher = f
		}
	}
}

// NewEngine opens the store at cfg.DBPath and constructs every service.
func NewEngine(cfg config.Config, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	backend, err := badger.OpenBackend(cfg.DBPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	local, err := search.NewOrchestrator(repo,
		search.WithDim(cfg.BasinDim),
		search.WithSnippetLen(cfg.SnippetLen),
		search.WithLogger(logger),
	)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider = search.NewSerperClient(cfg.SerperAPIKey, search.WithSerperLogger(logger))
	}
	fetcher := options.fetcher
	if fetcher == nil {
		fetcher = fetch.NewHTTPFetcher(fetch.WithLogger(logger))
	}

	hybrid, err := search.NewHybridOrchestrator(provider, fetcher,
		search.WithFetchContent(cfg.FetchContent),
		search.WithMaxFetch(cfg.MaxFetch),
		search.WithFetchWorkers(cfg.FetchWorkers),
		search.WithHybridDim(cfg.BasinDim),
		search.WithTextCaps(cfg.MaxTextLen, cfg.ExcerptLen),
		search.WithLocale(cfg.Country, cfg.Language),
		search.WithHybridLogger(logger),
	)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	learn, err := learner.NewLearner(repo, fetcher,
		learner.WithQueueCapacity(cfg.QueueCapacity),
		learner.WithCrawlDelay(cfg.CrawlDelay),
		learner.WithMinContentLen(cfg.MinContentLen),
		learner.WithMaxTextLen(cfg.MaxTextLen),
		learner.WithSeenCapacity(cfg.SeenCapacity),
		learner.WithDim(cfg.BasinDim),
		learner.WithLogger(logger),
	)
	if err != nil {
		hybrid.Release()
		repo.Close()
		backend.Close()
		return nil, err
	}

	crawl, err := crawler.NewCrawler(repo, fetcher,
		crawler.WithMaxDepth(cfg.CrawlMaxDepth),
		crawler.WithMaxPages(cfg.CrawlMaxPages),
		crawler.WithWorkers(cfg.FetchWorkers),
		crawler.WithDownloadDelay(cfg.CrawlDownloadDelay),
		crawler.WithDim(cfg.BasinDim),
		crawler.WithLogger(logger),
	)
	if err != nil {
		hybrid.Release()
		repo.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		cfg:     cfg,
		backend: backend,
		repo:    repo,
		local:   local,
		hybrid:  hybrid,
		learner: learn,
		crawler: crawl,
		cache:   search.NewCache(cfg.CacheSize, cfg.CacheTTL),
		logger:  logger,
	}, nil
}

// Search ranks stored documents against the query by basin distance.
// Responses are served from an expiring cache when possible.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	if cached, ok := e.cache.Get(query, limit); ok {
		return cached, nil
	}

	results, err := e.local.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	e.cache.Set(query, limit, results)
	return results, nil
}

// HybridSearch blends web results with basin re-ranking. When learn is
// true, result URLs are queued for the continuous learner.
func (e *Engine) HybridSearch(ctx context.Context, query string, limit int, alpha float64, learn bool) ([]core.HybridResult, error) {
	results, err := e.hybrid.Search(ctx, query, limit, alpha)
	if err != nil {
		return nil, err
	}
	if learn {
		queued := e.learner.EnqueueHybridResults(results)
		e.logger.Debug("queued hybrid results for learning", "count", queued)
	}
	return results, nil
}

// Crawl seeds the store by walking pages breadth-first from the given URLs.
func (e *Engine) Crawl(ctx context.Context, seeds []string) (crawler.Report, error) {
	return e.crawler.Crawl(ctx, seeds)
}

// StartLearning launches the background learner loop.
func (e *Engine) StartLearning(ctx context.Context) {
	e.learner.Start(ctx)
}

// StopLearning stops the background learner loop and waits for it to exit.
func (e *Engine) StopLearning() {
	e.learner.Stop()
}

// Learner exposes the continuous learner for direct queueing.
func (e *Engine) Learner() *learner.Learner {
	return e.learner
}

// Repository exposes the document store.
func (e *Engine) Repository() storage.DocumentRepository {
	return e.repo
}

// LearningStats returns a snapshot of the learner's counters.
func (e *Engine) LearningStats() core.LearningStats {
	return e.learner.Stats()
}

// Close stops the learner, releases the fetch pool and closes the store.
func (e *Engine) Close() error {
	e.learner.Stop()
	e.hybrid.Release()

	if err := e.repo.Close(); err != nil {
		e.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
