package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GaryOcean428/qsearch/core"
	"github.com/GaryOcean428/qsearch/fetch"
	"github.com/GaryOcean428/qsearch/storage"
	"github.com/GaryOcean428/qsearch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

// newTestSite serves a small three-level site:
// / -> /a, /b ; /a -> /deep ; /b and /deep are leaves.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	page := func(title, body string, links ...string) string {
		var b strings.Builder
		fmt.Fprintf(&b, "<html><head><title>%s</title></head><body><p>%s</p>", title, body)
		for _, l := range links {
			fmt.Fprintf(&b, `<a href=%q>link</a>`, l)
		}
		b.WriteString("</body></html>")
		return b.String()
	}
	filler := strings.Repeat("Page content used for encoding. ", 8)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page("Root", filler, "/a", "/b"))
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page("Page A", filler, "/deep"))
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page("Page B", filler))
	})
	mux.HandleFunc("/deep", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page("Deep Page", filler))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestCrawler(t *testing.T, repo storage.DocumentRepository, opts ...CrawlerOption) *Crawler {
	t.Helper()
	opts = append([]CrawlerOption{WithDownloadDelay(0)}, opts...)
	c, err := NewCrawler(repo, fetch.NewHTTPFetcher(), opts...)
	require.NoError(t, err)
	return c
}

func TestNewCrawlerNilDependencies(t *testing.T) {
	repo := newTestRepo(t)

	_, err := NewCrawler(nil, fetch.NewHTTPFetcher())
	require.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewCrawler(repo, nil)
	require.ErrorIs(t, err, ErrFetcherRequired)
}

func TestCrawlFollowsLinks(t *testing.T) {
	repo := newTestRepo(t)
	srv := newTestSite(t)

	c := newTestCrawler(t, repo, WithMaxDepth(2))
	report, err := c.Crawl(context.Background(), []string{srv.URL + "/"})
	require.NoError(t, err)

	assert.Equal(t, 4, report.PagesCrawled)
	assert.Equal(t, 0, report.PagesFailed)
	assert.Equal(t, 4, report.DocumentsStored)

	count, err := repo.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	doc, err := repo.GetDocument(context.Background(), core.DocIDFromURL(srv.URL+"/a"))
	require.NoError(t, err)
	assert.Equal(t, "Page A", doc.Title)
	assert.NotEmpty(t, doc.Basin)
}

func TestCrawlDepthLimit(t *testing.T) {
	repo := newTestRepo(t)
	srv := newTestSite(t)

	// Depth 1 reaches /a and /b but not /deep.
	c := newTestCrawler(t, repo, WithMaxDepth(1))
	report, err := c.Crawl(context.Background(), []string{srv.URL + "/"})
	require.NoError(t, err)

	assert.Equal(t, 3, report.PagesCrawled)

	_, err = repo.GetDocument(context.Background(), core.DocIDFromURL(srv.URL+"/deep"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCrawlPageBudget(t *testing.T) {
	repo := newTestRepo(t)
	srv := newTestSite(t)

	c := newTestCrawler(t, repo, WithMaxDepth(2), WithMaxPages(2))
	report, err := c.Crawl(context.Background(), []string{srv.URL + "/"})
	require.NoError(t, err)

	assert.LessOrEqual(t, report.PagesCrawled+report.PagesFailed, 3)
}

func TestCrawlOverwritesExisting(t *testing.T) {
	repo := newTestRepo(t)
	srv := newTestSite(t)

	url := srv.URL + "/b"
	stale := &core.Document{
		DocID: core.DocIDFromURL(url),
		URL:   url,
		Title: "Stale",
		Text:  "stale content",
		Basin: []float32{1, 0, 0, 0},
		Phi:   1,
	}
	require.NoError(t, repo.UpsertDocument(context.Background(), stale))

	c := newTestCrawler(t, repo, WithMaxDepth(0))
	_, err := c.Crawl(context.Background(), []string{url})
	require.NoError(t, err)

	doc, err := repo.GetDocument(context.Background(), stale.DocID)
	require.NoError(t, err)
	assert.Equal(t, "Page B", doc.Title)
	assert.NotEqual(t, "stale content", doc.Text)
}

func TestCrawlCountsFailures(t *testing.T) {
	repo := newTestRepo(t)
	srv := newTestSite(t)

	c := newTestCrawler(t, repo, WithMaxDepth(0))
	report, err := c.Crawl(context.Background(), []string{srv.URL + "/missing"})
	require.NoError(t, err)

	assert.Equal(t, 0, report.PagesCrawled)
	assert.Equal(t, 1, report.PagesFailed)
}

func TestCrawlCancelled(t *testing.T) {
	repo := newTestRepo(t)
	srv := newTestSite(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCrawler(t, repo, WithDownloadDelay(10*time.Millisecond))
	_, err := c.Crawl(ctx, []string{srv.URL + "/"})
	require.ErrorIs(t, err, context.Canceled)
}
