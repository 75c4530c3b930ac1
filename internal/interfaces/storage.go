package interfaces

import (
	"context"

	"github.com/bobmcallan/rebal/internal/models"
)

// StateStore persists the session state (trades, holdings, analysis).
type StateStore interface {
	// LoadState returns the persisted state, or (nil, nil) when no state
	// file exists yet. A corrupt file is surfaced as an error so the caller
	// can decide to start fresh.
	LoadState(ctx context.Context) (*models.PortfolioState, error)
	SaveState(ctx context.Context, state *models.PortfolioState) error
	DeleteState(ctx context.Context) error
}

// CacheStore persists the price cache (prices + exchange rates).
type CacheStore interface {
	// LoadCache returns the persisted cache, or (nil, nil) when no cache
	// file exists yet.
	LoadCache(ctx context.Context) (*models.PriceCacheFile, error)
	SaveCache(ctx context.Context, cache *models.PriceCacheFile) error
	DeleteCache(ctx context.Context) error
}
