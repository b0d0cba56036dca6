package learner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/storage"
	"github.com/GaryOcean428/qsearch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned bodies and fails for unknown URLs.
type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("fetch refused")
	}
	return []byte(body), nil
}

func newTestRepo(t *testing.T) storage.DocumentRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func longPage(topic string) string {
	body := strings.Repeat("Plenty of substantial page content about "+topic+". ", 10)
	return "<html><head><title>" + topic + "</title></head><body><p>" + body + "</p></body></html>"
}

func TestNewLearnerNilDependencies(t *testing.T) {
	repo := newTestRepo(t)

	_, err := NewLearner(nil, &fakeFetcher{})
	require.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewLearner(repo, nil)
	require.ErrorIs(t, err, ErrFetcherRequired)
}

func TestEnqueueDeduplicates(t *testing.T) {
	l, err := NewLearner(newTestRepo(t), &fakeFetcher{})
	require.NoError(t, err)

	assert.True(t, l.Enqueue("https://example.com/page", 5, "test"))
	assert.False(t, l.Enqueue("https://example.com/page", 9, "test"))

	stats := l.Stats()
	assert.Equal(t, int64(1), stats.URLsQueued)
	assert.Equal(t, 1, stats.QueueSize)
}

func TestEnqueueEmptyURL(t *testing.T) {
	l, err := NewLearner(newTestRepo(t), &fakeFetcher{})
	require.NoError(t, err)

	assert.False(t, l.Enqueue("", 5, "test"))
	assert.Equal(t, 0, l.Stats().QueueSize)
}

func TestEnqueueEvictsAtCapacity(t *testing.T) {
	l, err := NewLearner(newTestRepo(t), &fakeFetcher{}, WithQueueCapacity(3))
	require.NoError(t, err)

	assert.True(t, l.Enqueue("https://example.com/1", 1, "test"))
	assert.True(t, l.Enqueue("https://example.com/2", 2, "test"))
	assert.True(t, l.Enqueue("https://example.com/3", 3, "test"))

	// Capacity reached: the lowest-priority task makes room.
	assert.True(t, l.Enqueue("https://example.com/4", 4, "test"))
	assert.Equal(t, 3, l.Stats().QueueSize)
}

func TestEnqueueHybridResults(t *testing.T) {
	l, err := NewLearner(newTestRepo(t), &fakeFetcher{})
	require.NoError(t, err)

	results := []core.HybridResult{
		{URL: "https://example.com/first"},
		{URL: "https://example.com/second"},
		{URL: "https://example.com/first"}, // duplicate
	}
	assert.Equal(t, 2, l.EnqueueHybridResults(results))
	assert.Equal(t, 2, l.Stats().QueueSize)
}

func TestStartStopLifecycle(t *testing.T) {
	l, err := NewLearner(newTestRepo(t), &fakeFetcher{}, WithCrawlDelay(time.Millisecond))
	require.NoError(t, err)

	assert.False(t, l.Stats().Running)

	l.Start(context.Background())
	assert.True(t, l.Stats().Running)

	// Start on a running learner is a no-op.
	l.Start(context.Background())

	l.Stop()
	assert.False(t, l.Stats().Running)

	// Stop on a stopped learner is a no-op.
	l.Stop()
}

func TestLearnerIndexesQueuedURL(t *testing.T) {
	repo := newTestRepo(t)
	url := "https://example.com/article"
	fetcher := &fakeFetcher{pages: map[string]string{url: longPage("basin geometry")}}

	l, err := NewLearner(repo, fetcher, WithCrawlDelay(time.Millisecond))
	require.NoError(t, err)

	require.True(t, l.Enqueue(url, 5, "test"))
	l.Start(context.Background())
	defer l.Stop()

	require.Eventually(t, func() bool {
		return l.Stats().DocumentsAdded == 1
	}, 2*time.Second, 10*time.Millisecond)

	doc, err := repo.GetDocument(context.Background(), core.DocIDFromURL(url))
	require.NoError(t, err)
	assert.Equal(t, url, doc.URL)
	assert.Equal(t, "basin geometry", doc.Title)
	assert.NotEmpty(t, doc.Basin)
	assert.GreaterOrEqual(t, doc.Phi, 0.0)
	assert.LessOrEqual(t, doc.Phi, 1.0)

	stats := l.Stats()
	assert.Equal(t, int64(1), stats.URLsCrawled)
	assert.Equal(t, int64(0), stats.URLsFailed)
	assert.False(t, stats.LastCrawlTime.IsZero())
}

func TestLearnerSkipsShortContent(t *testing.T) {
	repo := newTestRepo(t)
	url := "https://example.com/stub"
	fetcher := &fakeFetcher{pages: map[string]string{
		url: "<html><body><p>too short</p></body></html>",
	}}

	l, err := NewLearner(repo, fetcher, WithCrawlDelay(time.Millisecond))
	require.NoError(t, err)

	require.True(t, l.Enqueue(url, 5, "test"))
	l.Start(context.Background())
	defer l.Stop()

	require.Eventually(t, func() bool {
		return l.Stats().URLsCrawled == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Crawled but not indexed.
	assert.Equal(t, int64(0), l.Stats().DocumentsAdded)
	count, err := repo.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLearnerCountsFailures(t *testing.T) {
	l, err := NewLearner(newTestRepo(t), &fakeFetcher{}, WithCrawlDelay(time.Millisecond))
	require.NoError(t, err)

	require.True(t, l.Enqueue("https://dead.example.com", 5, "test"))
	l.Start(context.Background())
	defer l.Stop()

	require.Eventually(t, func() bool {
		return l.Stats().URLsFailed == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int64(0), l.Stats().DocumentsAdded)
}

func TestLearnerSkipsExistingDocument(t *testing.T) {
	repo := newTestRepo(t)
	url := "https://example.com/known"

	existing := &core.Document{
		DocID: core.DocIDFromURL(url),
		URL:   url,
		Title: "Existing",
		Text:  "already stored",
		Basin: []float32{1, 0, 0, 0},
		Phi:   1,
	}
	require.NoError(t, repo.UpsertDocument(context.Background(), existing))

	fetcher := &fakeFetcher{pages: map[string]string{url: longPage("replacement")}}
	l, err := NewLearner(repo, fetcher, WithCrawlDelay(time.Millisecond))
	require.NoError(t, err)

	require.True(t, l.Enqueue(url, 5, "test"))
	l.Start(context.Background())
	defer l.Stop()

	require.Eventually(t, func() bool {
		return l.Stats().URLsCrawled == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The stored document is untouched.
	assert.Equal(t, int64(0), l.Stats().DocumentsAdded)
	doc, err := repo.GetDocument(context.Background(), existing.DocID)
	require.NoError(t, err)
	assert.Equal(t, "already stored", doc.Text)
}
