package search

import "context"

// WebResult is a single ranked result from an external web search provider.
type WebResult struct {
	Title    string
	URL      string
	Snippet  string
	Position int // 1-based rank
}

// WebResponse is a provider's answer to one query.
type WebResponse struct {
	Query      string
	Results    []WebResult
	SearchTime float64
}

// WebProvider searches the web. Implementations must not return errors:
// any failure yields an empty result set so callers always receive a
// well-formed (possibly empty) response.
type WebProvider interface {
	Search(ctx context.Context, query string, numResults int, country, language string) WebResponse
}
