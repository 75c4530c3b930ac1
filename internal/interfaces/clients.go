// Package interfaces defines the service contracts for Rebal
package interfaces

import (
	"context"
	"time"
)

// MarketDataClient provides live quotes from a market data API.
type MarketDataClient interface {
	// GetPreviousClose returns the previous session's closing price.
	GetPreviousClose(ctx context.Context, ticker string) (float64, error)

	// GetDailyClose returns the most recent daily close within the window.
	GetDailyClose(ctx context.Context, ticker string, from, to time.Time) (float64, error)

	// GetLastTrade returns the price of the most recent trade.
	GetLastTrade(ctx context.Context, ticker string) (float64, error)

	// GetForexPreviousClose returns the previous close for a currency pair
	// (e.g. "USDEUR").
	GetForexPreviousClose(ctx context.Context, pair string) (float64, error)
}

// SearchResult is one hit from a web search.
type SearchResult struct {
	Title       string
	Description string
	URL         string
}

// SearchClient performs web searches used for last-resort price discovery.
type SearchClient interface {
	Search(ctx context.Context, query string, count int) ([]SearchResult, error)
}
