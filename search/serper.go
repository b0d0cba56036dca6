package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// serperBaseURL is the Serper.dev Google Search endpoint.
const serperBaseURL = "https://google.serper.dev/search"

// SerperClient is a WebProvider backed by the Serper.dev API.
// A client without an API key is disabled and returns empty responses.
type SerperClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ WebProvider = (*SerperClient)(nil)

// SerperOption configures a SerperClient.
type SerperOption func(*SerperClient)

// WithSerperBaseURL overrides the API endpoint. Used in tests.
func WithSerperBaseURL(u string) SerperOption {
	return func(c *SerperClient) {
		c.baseURL = u
	}
}

// WithSerperHTTPClient overrides the HTTP client.
func WithSerperHTTPClient(hc *http.Client) SerperOption {
	return func(c *SerperClient) {
		c.httpClient = hc
	}
}

// WithSerperLogger sets a custom logger. Default is slog.Default().
func WithSerperLogger(logger *slog.Logger) SerperOption {
	return func(c *SerperClient) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewSerperClient creates a Serper.dev client.
func NewSerperClient(apiKey string, opts ...SerperOption) *SerperClient {
	c := &SerperClient{
		apiKey:     apiKey,
		baseURL:    serperBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" {
		c.logger.Warn("serper api key not set - web search disabled")
	}
	return c
}

// Enabled reports whether the client has an API key.
func (c *SerperClient) Enabled() bool {
	return c.apiKey != ""
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
}

type serperPayload struct {
	SearchParameters struct {
		TimeUsed float64 `json:"timeUsed"`
	} `json:"searchParameters"`
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search queries Serper and converts organic results into ranked WebResults.
// Never returns an error: failures are logged and yield an empty response.
func (c *SerperClient) Search(ctx context.Context, query string, numResults int, country, language string) WebResponse {
	empty := WebResponse{Query: query}
	if !c.Enabled() {
		return empty
	}

	reqBody, err := json.Marshal(serperRequest{Q: query, Num: numResults, GL: country, HL: language})
	if err != nil {
		c.logger.Error("serper request encoding failed", "err", err)
		return empty
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		c.logger.Error("serper request creation failed", "err", err)
		return empty
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("serper search failed", "query", query, "err", err)
		return empty
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("serper api error", "query", query, "status", resp.StatusCode)
		return empty
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("serper response read failed", "err", err)
		return empty
	}

	var payload serperPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Error("serper response decoding failed", "err", err)
		return empty
	}

	results := make([]WebResult, 0, len(payload.Organic))
	for i, item := range payload.Organic {
		if i >= numResults {
			break
		}
		results = append(results, WebResult{
			Title:    item.Title,
			URL:      item.Link,
			Snippet:  item.Snippet,
			Position: i + 1,
		})
	}

	return WebResponse{
		Query:      query,
		Results:    results,
		SearchTime: payload.SearchParameters.TimeUsed,
	}
}
