package interfaces

import (
	"context"

	"github.com/bobmcallan/rebal/internal/models"
)

// AssetSource exposes the loaded asset catalog to the pricing layer.
type AssetSource interface {
	Asset(id string) *models.Asset
	Assets() []models.Asset
}

// PriceExtractor pulls a plausible price out of free text.
type PriceExtractor interface {
	// ExtractPrice returns the first candidate price found in the text and
	// whether one was found at all.
	ExtractPrice(text string) (float64, bool)
}

// PriceResolver resolves an asset to its best available price.
type PriceResolver interface {
	// ResolvePrice returns the price and its source tag. The resolver
	// exhausts every fallback before failing, so the only error for a
	// known catalog is an unknown asset id.
	ResolvePrice(ctx context.Context, assetID string) (price float64, source string, err error)

	// ExchangeRate returns the conversion rate between two currencies.
	// It never fails; the last resort is a hardcoded approximation.
	ExchangeRate(ctx context.Context, from, to string) float64

	// InvalidateLive drops the per-process live-fetch memo so the next
	// resolution re-attempts the market API. Cached TTL entries survive.
	InvalidateLive()

	// WipeCache empties the price cache, exchange rates, and the cache file.
	WipeCache(ctx context.Context) error
}
