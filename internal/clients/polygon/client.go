// Package polygon provides a client for the Polygon.io market data API
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://api.polygon.io"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Polygon client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Polygon API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Polygon API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// aggsResponse represents an aggregate bars API response
type aggsResponse struct {
	Status       string    `json:"status"`
	ResultsCount int       `json:"resultsCount"`
	Results      []aggsBar `json:"results"`
}

type aggsBar struct {
	Close     float64 `json:"c"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Volume    float64 `json:"v"`
	Timestamp int64   `json:"t"`
}

// lastTradeResponse represents the last trade API response
type lastTradeResponse struct {
	Status  string `json:"status"`
	Results struct {
		Price float64 `json:"p"`
	} `json:"results"`
}

// GetPreviousClose returns the previous session's closing price.
func (c *Client) GetPreviousClose(ctx context.Context, ticker string) (float64, error) {
	params := url.Values{}
	params.Set("adjusted", "true")

	var resp aggsResponse
	path := fmt.Sprintf("/v2/aggs/ticker/%s/prev", url.PathEscape(ticker))
	if err := c.get(ctx, path, params, &resp); err != nil {
		return 0, err
	}

	if len(resp.Results) == 0 || resp.Results[0].Close <= 0 {
		return 0, fmt.Errorf("no previous close for '%s'", ticker)
	}
	return resp.Results[0].Close, nil
}

// GetDailyClose returns the most recent daily close within the window.
func (c *Client) GetDailyClose(ctx context.Context, ticker string, from, to time.Time) (float64, error) {
	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "desc")
	params.Set("limit", "1")

	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		url.PathEscape(ticker), from.Format("2006-01-02"), to.Format("2006-01-02"))

	var resp aggsResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return 0, err
	}

	if len(resp.Results) == 0 || resp.Results[0].Close <= 0 {
		return 0, fmt.Errorf("no daily bars for '%s' between %s and %s",
			ticker, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return resp.Results[0].Close, nil
}

// GetLastTrade returns the price of the most recent trade.
func (c *Client) GetLastTrade(ctx context.Context, ticker string) (float64, error) {
	var resp lastTradeResponse
	path := fmt.Sprintf("/v2/last/trade/%s", url.PathEscape(ticker))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return 0, err
	}

	if resp.Results.Price <= 0 {
		return 0, fmt.Errorf("no last trade for '%s'", ticker)
	}
	return resp.Results.Price, nil
}

// GetForexPreviousClose returns the previous close for a currency pair.
// Polygon addresses forex pairs as "C:" tickers (e.g. "C:USDEUR").
func (c *Client) GetForexPreviousClose(ctx context.Context, pair string) (float64, error) {
	return c.GetPreviousClose(ctx, "C:"+pair)
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
