// Package learner runs the background crawl-and-learn loop: URLs discovered
// during searches are queued with priority, fetched one at a time, encoded
// to basin vectors and persisted as new documents for future searches.
package learner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GaryOcean428/qsearch/basin"
	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/fetch"
	"github.com/GaryOcean428/qsearch/storage"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultQueueCapacity = 1000
	defaultCrawlDelay    = time.Second
	defaultMinContentLen = 100
	defaultMaxTextLen    = 5000
	defaultSeenCapacity  = 100_000

	// defaultSource tags tasks queued without an explicit source.
	defaultSource = "hybrid_search"
)

// Learner continuously learns from discovered content. URLs are queued with
// priority, crawled by a single background loop, and persisted with the
// idempotent insert-if-absent policy: re-crawling a known URL is a no-op.
type Learner struct {
	repo          storage.DocumentRepository
	fetcher       fetch.Fetcher
	dim           int
	queueCapacity int
	crawlDelay    time.Duration
	minContentLen int
	maxTextLen    int
	logger        *slog.Logger

	mu      sync.Mutex
	queue   taskQueue
	seen    *lru.Cache[string, struct{}]
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	queued    int64
	crawled   int64
	failed    int64
	added     int64
	lastCrawl time.Time
}

// LearnerOption configures a Learner.
type LearnerOption func(*Learner) error

// WithQueueCapacity bounds the crawl queue. When full, the lowest-priority
// task is evicted to make room. Default is 1000.
func WithQueueCapacity(n int) LearnerOption {
	return func(l *Learner) error {
		if n > 0 {
			l.queueCapacity = n
		}
		return nil
	}
}

// WithCrawlDelay sets the pause between dispatched tasks. Default is 1s.
func WithCrawlDelay(d time.Duration) LearnerOption {
	return func(l *Learner) error {
		if d > 0 {
			l.crawlDelay = d
		}
		return nil
	}
}

// WithMinContentLen sets the minimum extracted-text length worth indexing.
// Shorter pages are dropped silently. Default is 100.
func WithMinContentLen(n int) LearnerOption {
	return func(l *Learner) error {
		if n > 0 {
			l.minContentLen = n
		}
		return nil
	}
}

// WithMaxTextLen caps stored document text. Default is 5000.
func WithMaxTextLen(n int) LearnerOption {
	return func(l *Learner) error {
		if n > 0 {
			l.maxTextLen = n
		}
		return nil
	}
}

// WithSeenCapacity bounds the seen-URL set. Default is 100000.
func WithSeenCapacity(n int) LearnerOption {
	return func(l *Learner) error {
		if n > 0 {
			seen, err := lru.New[string, struct{}](n)
			if err != nil {
				return err
			}
			l.seen = seen
		}
		return nil
	}
}

// WithDim sets the basin vector dimension. Default is basin.Dim.
func WithDim(dim int) LearnerOption {
	return func(l *Learner) error {
		if dim > 0 {
			l.dim = dim
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) LearnerOption {
	return func(l *Learner) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLearner creates a continuous learner. It does not start crawling
// until Start is called.
func NewLearner(repo storage.DocumentRepository, fetcher fetch.Fetcher, opts ...LearnerOption) (*Learner, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	seen, err := lru.New[string, struct{}](defaultSeenCapacity)
	if err != nil {
		return nil, err
	}

	l := &Learner{
		repo:          repo,
		fetcher:       fetcher,
		dim:           basin.Dim,
		queueCapacity: defaultQueueCapacity,
		crawlDelay:    defaultCrawlDelay,
		minContentLen: defaultMinContentLen,
		maxTextLen:    defaultMaxTextLen,
		logger:        slog.Default(),
		seen:          seen,
	}
	for _, opt := range opts {
		if optErr := opt(l); optErr != nil {
			return nil, optErr
		}
	}
	return l, nil
}

// Enqueue adds a URL to the crawl queue. Reports false for URLs that have
// been seen before. When the queue is full, the lowest-priority task is
// evicted to make room.
func (l *Learner) Enqueue(url string, priority int, source string) bool {
	if url == "" {
		return false
	}
	if source == "" {
		source = defaultSource
	}
	urlHash := core.DocIDFromURL(url)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seen.Contains(urlHash) {
		return false
	}
	if l.queue.Len() >= l.queueCapacity {
		l.queue.evictLowest()
	}
	l.queue.push(&core.CrawlTask{
		URL:       url,
		Priority:  priority,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	})
	l.seen.Add(urlHash, struct{}{})
	l.queued++

	l.logger.Debug("queued url", "url", url, "priority", priority, "source", source)
	return true
}

// EnqueueHybridResults queues the URLs of a hybrid search result list,
// giving earlier results higher priority. Returns how many were accepted.
func (l *Learner) EnqueueHybridResults(results []core.HybridResult) int {
	count := 0
	for i, r := range results {
		if l.Enqueue(r.URL, len(results)-i, defaultSource) {
			count++
		}
	}
	return count
}

// Start launches the background crawl loop. Calling Start on a running
// learner is a no-op.
func (l *Learner) Start(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done
	l.running = true
	l.mu.Unlock()

	go func() {
		defer close(done)
		l.loop(loopCtx)
	}()
	l.logger.Info("continuous learner started")
}

// Stop cancels the crawl loop and waits for it to exit. After Stop returns
// no further task is dispatched. Calling Stop on a stopped learner is a
// no-op.
func (l *Learner) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	done := l.done
	l.running = false
	l.mu.Unlock()

	cancel()
	<-done
	l.logger.Info("continuous learner stopped")
}

// Stats returns a snapshot of the learner's counters.
func (l *Learner) Stats() core.LearningStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.LearningStats{
		URLsQueued:     l.queued,
		URLsCrawled:    l.crawled,
		URLsFailed:     l.failed,
		DocumentsAdded: l.added,
		QueueSize:      l.queue.Len(),
		LastCrawlTime:  l.lastCrawl,
		Running:        l.running,
	}
}

// loop dispatches queued tasks one at a time until the context is
// cancelled, sleeping for the crawl delay between dispatches.
func (l *Learner) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		l.mu.Lock()
		task := l.queue.pop()
		l.mu.Unlock()

		if task == nil {
			if !l.sleep(ctx) {
				return
			}
			continue
		}

		if err := l.crawlAndIndex(ctx, task.URL); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error("crawl failed", "url", task.URL, "err", err)
			l.mu.Lock()
			l.failed++
			l.mu.Unlock()
		} else {
			l.mu.Lock()
			l.crawled++
			l.lastCrawl = time.Now().UTC()
			l.mu.Unlock()
		}

		if !l.sleep(ctx) {
			return
		}
	}
}

// sleep waits for the crawl delay, returning false if cancelled.
func (l *Learner) sleep(ctx context.Context) bool {
	timer := time.NewTimer(l.crawlDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// crawlAndIndex fetches one URL, extracts and encodes its content, and
// persists it unless a document with the same ID already exists.
// Pages below the minimum content length are dropped without error.
func (l *Learner) crawlAndIndex(ctx context.Context, url string) error {
	body, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}

	title, text, err := fetch.ExtractText(body)
	if err != nil {
		return err
	}
	if len(text) > l.maxTextLen {
		text = text[:l.maxTextLen]
	}
	if len(text) < l.minContentLen {
		l.logger.Debug("skipping url - content too short", "url", url, "len", len(text))
		return nil
	}

	b := basin.Encode(text, l.dim)
	doc := &core.Document{
		DocID:     core.DocIDFromURL(url),
		URL:       url,
		Title:     title,
		Text:      text,
		Basin:     b,
		Phi:       basin.Phi(b),
		FetchedAt: time.Now().UTC(),
	}

	inserted, err := l.repo.InsertDocumentIfAbsent(ctx, doc)
	if err != nil {
		return err
	}
	if !inserted {
		l.logger.Debug("document already exists", "url", url)
		return nil
	}

	l.mu.Lock()
	l.added++
	l.mu.Unlock()
	l.logger.Info("indexed document", "url", url, "phi", doc.Phi)
	return nil
}
