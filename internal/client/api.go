// Package client consumes the search API: a thin HTTP client plus a
// debounced controller that drives searches and holds view state.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paperscout/research-search-service/internal/domain"
)

const defaultRequestTimeout = 15 * time.Second

// APIClient calls the search service over HTTP.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the service at baseURL, for
// example "http://localhost:3000".
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// errorBody is the error envelope the API returns on failures.
type errorBody struct {
	Error string `json:"error"`
}

// Search runs one search and returns the decoded result. Non-2xx
// responses are returned as errors carrying the API's error message.
func (c *APIClient) Search(ctx context.Context, query string, rows int) (*domain.SearchResult, error) {
	u, err := url.Parse(c.baseURL + "/api/search")
	if err != nil {
		return nil, fmt.Errorf("build search URL: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	if rows > 0 {
		params.Set("rows", strconv.Itoa(rows))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorBody
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("search failed: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var result domain.SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &result, nil
}
