package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data/qsearch", cfg.DBPath)
	assert.Equal(t, 64, cfg.BasinDim)
	assert.Equal(t, 10, cfg.MaxFetch)
	assert.True(t, cfg.FetchContent)
	assert.Equal(t, 1000, cfg.QueueCapacity)
	assert.Equal(t, time.Second, cfg.CrawlDelay)
	assert.Equal(t, 100, cfg.MinContentLen)
	assert.Equal(t, "us", cfg.Country)
	assert.Equal(t, "en", cfg.Language)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("QSEARCH_DB_PATH", "/tmp/qsearch-test")
	t.Setenv("SERPER_API_KEY", "key-123")
	t.Setenv("QSEARCH_BASIN_DIM", "128")
	t.Setenv("QSEARCH_FETCH_CONTENT", "false")
	t.Setenv("QSEARCH_CRAWL_DELAY", "250ms")

	cfg := FromEnv()

	assert.Equal(t, "/tmp/qsearch-test", cfg.DBPath)
	assert.Equal(t, "key-123", cfg.SerperAPIKey)
	assert.Equal(t, 128, cfg.BasinDim)
	assert.False(t, cfg.FetchContent)
	assert.Equal(t, 250*time.Millisecond, cfg.CrawlDelay)

	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.MaxFetch)
}

func TestFromEnvMalformedValuesFallBack(t *testing.T) {
	t.Setenv("QSEARCH_BASIN_DIM", "not-a-number")
	t.Setenv("QSEARCH_FETCH_CONTENT", "not-a-bool")
	t.Setenv("QSEARCH_CRAWL_DELAY", "not-a-duration")

	cfg := FromEnv()

	assert.Equal(t, 64, cfg.BasinDim)
	assert.True(t, cfg.FetchContent)
	assert.Equal(t, time.Second, cfg.CrawlDelay)
}
