package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/paperscout/research-search-service/internal/domain"
)

const (
	// DefaultBaseURL is the default CrossRef API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultTimeout bounds each outbound works request.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the sustained outbound request rate per second.
	// CrossRef's polite pool asks clients to stay around this rate.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the maximum burst of outbound requests.
	DefaultBurstSize = 10

	// maxResponseBytes caps the decoded response body.
	maxResponseBytes = 10 << 20

	sourceName = "CrossRef"
)

// Config holds configuration for the CrossRef client.
type Config struct {
	// BaseURL is the CrossRef API base URL. Defaults to https://api.crossref.org.
	BaseURL string

	// Mailto is the optional contact identifier forwarded to CrossRef.
	// Providing one places requests in the polite pool.
	// See: https://api.crossref.org/swagger-ui/index.html#meta
	Mailto string

	// Timeout bounds each request. Defaults to 10 seconds.
	Timeout time.Duration

	// RateLimit is the maximum outbound requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of outbound requests.
	BurstSize int

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.UserAgent == "" {
		c.UserAgent = "research-search-service/1.0"
		if c.Mailto != "" {
			c.UserAgent = "research-search-service/1.0 (mailto:" + c.Mailto + ")"
		}
	}
}

// Client queries the CrossRef works endpoint. It applies outbound rate
// limiting before each request and issues exactly one attempt per call;
// there are no retries, the end user re-issues through the UI.
// Safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a new CrossRef client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.BurstSize),
	}
}

// FetchWorks issues one works query for the given text and row count and
// returns the raw items plus the upstream-reported total.
//
// Failure mapping: a timeout or context deadline maps to an UpstreamError
// in the timeout class; any other transport error or non-2xx response
// maps to the failure class carrying status and a body snippet for
// server-side logging.
func (c *Client) FetchWorks(ctx context.Context, query string, rows int) (*WorksMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	reqURL, err := c.buildWorksURL(query, rows)
	if err != nil {
		return nil, fmt.Errorf("building works URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.NewUpstreamTimeoutError(sourceName, err)
		}
		return nil, domain.NewUpstreamFailureError(sourceName, 0, "transport error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, domain.NewUpstreamFailureError(sourceName, resp.StatusCode, string(body), nil)
	}

	var worksResp WorksResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&worksResp); err != nil {
		return nil, domain.NewUpstreamFailureError(sourceName, resp.StatusCode, "decoding response", err)
	}

	return &worksResp.Message, nil
}

// buildWorksURL constructs the works endpoint URL with query parameters.
func (c *Client) buildWorksURL(query string, rows int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = "/works"

	params := url.Values{}
	params.Set("query", query)
	params.Set("rows", strconv.Itoa(rows))
	if c.config.Mailto != "" {
		params.Set("mailto", c.config.Mailto)
	}

	baseURL.RawQuery = params.Encode()
	return baseURL.String(), nil
}

// isTimeout reports whether err is a deadline or transport timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
