// Package config loads engine settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable consumed by the engine. Zero values are not
// meaningful; construct with Default or FromEnv.
type Config struct {
	// DBPath is the BadgerDB directory for the document store.
	DBPath string

	// SerperAPIKey enables web search when set.
	SerperAPIKey string

	// Country and Language are passed to the web search provider.
	Country  string
	Language string

	BasinDim     int
	MaxFetch     int
	FetchContent bool
	FetchWorkers int

	QueueCapacity int
	CrawlDelay    time.Duration
	MinContentLen int
	MaxTextLen    int
	ExcerptLen    int
	SnippetLen    int
	SeenCapacity  int

	CrawlMaxDepth      int
	CrawlMaxPages      int
	CrawlDownloadDelay time.Duration

	CacheSize int
	CacheTTL  time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:             "data/qsearch",
		Country:            "us",
		Language:           "en",
		BasinDim:           64,
		MaxFetch:           10,
		FetchContent:       true,
		FetchWorkers:       8,
		QueueCapacity:      1000,
		CrawlDelay:         time.Second,
		MinContentLen:      100,
		MaxTextLen:         5000,
		ExcerptLen:         500,
		SnippetLen:         220,
		SeenCapacity:       100_000,
		CrawlMaxDepth:      2,
		CrawlMaxPages:      200,
		CrawlDownloadDelay: 250 * time.Millisecond,
		CacheSize:          512,
		CacheTTL:           time.Hour,
	}
}

// FromEnv loads configuration from the environment, after reading a .env
// file if one exists. Malformed values fall back to the defaults.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.DBPath = envString("QSEARCH_DB_PATH", cfg.DBPath)
	cfg.SerperAPIKey = envString("SERPER_API_KEY", cfg.SerperAPIKey)
	cfg.Country = envString("QSEARCH_COUNTRY", cfg.Country)
	cfg.Language = envString("QSEARCH_LANGUAGE", cfg.Language)

	cfg.BasinDim = envInt("QSEARCH_BASIN_DIM", cfg.BasinDim)
	cfg.MaxFetch = envInt("QSEARCH_MAX_FETCH", cfg.MaxFetch)
	cfg.FetchContent = envBool("QSEARCH_FETCH_CONTENT", cfg.FetchContent)
	cfg.FetchWorkers = envInt("QSEARCH_FETCH_WORKERS", cfg.FetchWorkers)

	cfg.QueueCapacity = envInt("QSEARCH_QUEUE_CAPACITY", cfg.QueueCapacity)
	cfg.CrawlDelay = envDuration("QSEARCH_CRAWL_DELAY", cfg.CrawlDelay)
	cfg.MinContentLen = envInt("QSEARCH_MIN_CONTENT_LEN", cfg.MinContentLen)
	cfg.MaxTextLen = envInt("QSEARCH_MAX_TEXT_LEN", cfg.MaxTextLen)
	cfg.ExcerptLen = envInt("QSEARCH_EXCERPT_LEN", cfg.ExcerptLen)
	cfg.SnippetLen = envInt("QSEARCH_SNIPPET_LEN", cfg.SnippetLen)
	cfg.SeenCapacity = envInt("QSEARCH_SEEN_CAPACITY", cfg.SeenCapacity)

	cfg.CrawlMaxDepth = envInt("QSEARCH_CRAWL_MAX_DEPTH", cfg.CrawlMaxDepth)
	cfg.CrawlMaxPages = envInt("QSEARCH_CRAWL_MAX_PAGES", cfg.CrawlMaxPages)
	cfg.CrawlDownloadDelay = envDuration("QSEARCH_CRAWL_DOWNLOAD_DELAY", cfg.CrawlDownloadDelay)

	cfg.CacheSize = envInt("QSEARCH_CACHE_SIZE", cfg.CacheSize)
	cfg.CacheTTL = envDuration("QSEARCH_CACHE_TTL", cfg.CacheTTL)
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
