// Package crawler implements a depth-limited link-following crawler that
// seeds the document store. Unlike the continuous learner, re-crawling a
// known page overwrites the stored document with fresh content.
package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/GaryOcean428/qsearch/basin"
	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/fetch"
	"github.com/GaryOcean428/qsearch/storage"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultMaxDepth      = 2
	defaultMaxPages      = 200
	defaultWorkers       = 8
	defaultDownloadDelay = 250 * time.Millisecond
	defaultMaxTextLen    = 5000
)

var (
	// ErrRepositoryRequired is returned when a document repository is not provided.
	ErrRepositoryRequired = errors.New("document repository required")

	// ErrFetcherRequired is returned when a content fetcher is not provided.
	ErrFetcherRequired = errors.New("content fetcher required")
)

// Report summarizes one crawl run.
type Report struct {
	PagesCrawled    int
	PagesFailed     int
	DocumentsStored int
}

// Crawler walks pages breadth-first from seed URLs, storing each page with
// the overwrite-on-duplicate policy.
type Crawler struct {
	repo       storage.DocumentRepository
	fetcher    fetch.Fetcher
	dim        int
	maxDepth   int
	maxPages   int
	workers    int
	delay      time.Duration
	maxTextLen int
	logger     *slog.Logger
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler) error

// WithMaxDepth sets how many link levels are followed from the seeds.
// Default is 2.
func WithMaxDepth(n int) CrawlerOption {
	return func(c *Crawler) error {
		if n >= 0 {
			c.maxDepth = n
		}
		return nil
	}
}

// WithMaxPages caps the total pages fetched per run. Default is 200.
func WithMaxPages(n int) CrawlerOption {
	return func(c *Crawler) error {
		if n > 0 {
			c.maxPages = n
		}
		return nil
	}
}

// WithWorkers bounds the concurrent page fetches. Default is 8.
func WithWorkers(n int) CrawlerOption {
	return func(c *Crawler) error {
		if n > 0 {
			c.workers = n
		}
		return nil
	}
}

// WithDownloadDelay sets the per-worker pause before each fetch.
// Default is 250ms.
func WithDownloadDelay(d time.Duration) CrawlerOption {
	return func(c *Crawler) error {
		if d >= 0 {
			c.delay = d
		}
		return nil
	}
}

// WithDim sets the basin vector dimension. Default is basin.Dim.
func WithDim(dim int) CrawlerOption {
	return func(c *Crawler) error {
		if dim > 0 {
			c.dim = dim
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCrawler creates a seed crawler.
func NewCrawler(repo storage.DocumentRepository, fetcher fetch.Fetcher, opts ...CrawlerOption) (*Crawler, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	c := &Crawler{
		repo:       repo,
		fetcher:    fetcher,
		dim:        basin.Dim,
		maxDepth:   defaultMaxDepth,
		maxPages:   defaultMaxPages,
		workers:    defaultWorkers,
		delay:      defaultDownloadDelay,
		maxTextLen: defaultMaxTextLen,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Crawl walks pages breadth-first from the seeds up to the configured
// depth and page budget. Individual page failures are counted, not fatal.
func (c *Crawler) Crawl(ctx context.Context, seeds []string) (Report, error) {
	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return Report{}, err
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		report  Report
		visited = make(map[string]bool)
	)

	frontier := make([]string, 0, len(seeds))
	for _, s := range seeds {
		if s != "" && !visited[s] {
			visited[s] = true
			frontier = append(frontier, s)
		}
	}

	for depth := 0; depth <= c.maxDepth && len(frontier) > 0; depth++ {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		var (
			wg   sync.WaitGroup
			next []string
		)
		for _, pageURL := range frontier {
			mu.Lock()
			budgetSpent := report.PagesCrawled+report.PagesFailed >= c.maxPages
			mu.Unlock()
			if budgetSpent {
				break
			}

			wg.Add(1)
			task := func() {
				defer wg.Done()
				links, err := c.crawlPage(ctx, pageURL)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if ctx.Err() == nil {
						c.logger.Warn("page crawl failed", "url", pageURL, "err", err)
					}
					report.PagesFailed++
					return
				}
				report.PagesCrawled++
				report.DocumentsStored++
				for _, link := range links {
					if !visited[link] {
						visited[link] = true
						next = append(next, link)
					}
				}
			}
			if submitErr := pool.Submit(task); submitErr != nil {
				task()
			}
		}
		wg.Wait()

		frontier = next
	}

	return report, nil
}

// crawlPage fetches one page, stores it with the overwrite policy and
// returns the links it contains.
func (c *Crawler) crawlPage(ctx context.Context, pageURL string) ([]string, error) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	title, text, err := fetch.ExtractText(body)
	if err != nil {
		return nil, err
	}
	if len(text) > c.maxTextLen {
		text = text[:c.maxTextLen]
	}

	b := basin.Encode(text, c.dim)
	doc := &core.Document{
		DocID:     core.DocIDFromURL(pageURL),
		URL:       pageURL,
		Title:     title,
		Text:      text,
		Basin:     b,
		Phi:       basin.Phi(b),
		FetchedAt: time.Now().UTC(),
	}
	if err := c.repo.UpsertDocument(ctx, doc); err != nil {
		return nil, err
	}

	links, err := fetch.ExtractLinks(body, pageURL)
	if err != nil {
		return nil, err
	}
	return links, nil
}
