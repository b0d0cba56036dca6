package search

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/GaryOcean428/qsearch/core"
	"github.com/go-crypt/x/blake2b"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = time.Hour
)

// Cache is an in-process expiring LRU for local search responses, keyed by
// a hash of the query and limit.
type Cache struct {
	lru *expirable.LRU[string, []core.SearchResult]
}

// NewCache creates a search cache. Non-positive size or ttl fall back to
// the defaults (512 entries, 1 hour).
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{
		lru: expirable.NewLRU[string, []core.SearchResult](size, nil, ttl),
	}
}

// Get returns the cached results for (query, limit), if present and fresh.
func (c *Cache) Get(query string, limit int) ([]core.SearchResult, bool) {
	return c.lru.Get(cacheKey(query, limit))
}

// Set stores results for (query, limit).
func (c *Cache) Set(query string, limit int, results []core.SearchResult) {
	c.lru.Add(cacheKey(query, limit), results)
}

// Len returns the number of live cache entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// cacheKey hashes query and limit into a fixed-width key.
func cacheKey(query string, limit int) string {
	h, _ := blake2b.New(16, nil)
	fmt.Fprintf(h, "%s\n%d", query, limit)
	return hex.EncodeToString(h.Sum(nil))
}
