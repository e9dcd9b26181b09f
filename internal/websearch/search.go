// Package websearch implements the last-resort provider: a web search API
// backed by direct, robots.txt-respecting page fetches. It answers claims no
// data source could, including claims about non-ticker entities.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/finfact/internal/model"
	"github.com/ppiankov/finfact/internal/util"
	"github.com/ppiankov/finfact/internal/worker"
)

const defaultSearchBaseURL = "https://api.tavily.com"

// Client calls the search API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxResults int
	limiter    *worker.Limiter
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results,omitempty"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// SearchResult is one ranked hit
type SearchResult struct {
	Title   string
	URL     string
	Content string
}

// NewClient creates a search client
func NewClient(httpCfg model.HTTPConfig, cfg model.SearchConfig, limiter *worker.Limiter) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}

	timeout := httpCfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
		maxResults: maxResults,
		limiter:    limiter,
	}
}

// Search runs a basic-depth query and returns the synthesized answer (may be
// empty) and the ranked results
func (c *Client) Search(ctx context.Context, query string) (string, []SearchResult, error) {
	reqBody := searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    c.maxResults,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/search"
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return "", nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("search API error: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 2_000_000))
	if err != nil {
		return "", nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("search API error: status %d", httpResp.StatusCode)
	}

	var resp searchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]SearchResult, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = SearchResult{Title: r.Title, URL: r.URL, Content: r.Content}
	}

	return strings.TrimSpace(resp.Answer), results, nil
}
