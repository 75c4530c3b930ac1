package pricing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/interfaces"
	"github.com/bobmcallan/rebal/internal/models"
)

// liveWindowDays is how far back the daily-bar fallback looks when the
// previous-close endpoint has nothing (thinly traded tickers, long weekends).
const liveWindowDays = 7

// trustedSites are queried with site-scoped searches before falling back to
// an unscoped web search. Order matters: first extractable price wins.
var trustedSites = []struct {
	domain string
	source string
}{
	{"finance.google.com", models.SourceGoogleFinance},
	{"finance.yahoo.com", models.SourceYahooFinance},
	{"marketwatch.com", models.SourceMarketWatch},
}

// Resolver resolves asset prices through a strict fallback chain:
// fresh cache, live market API, stale cache, web-search extraction,
// manual override, purchase price. Every resolved price is cached.
type Resolver struct {
	assets      interfaces.AssetSource
	market      interfaces.MarketDataClient
	search      interfaces.SearchClient
	extractor   interfaces.PriceExtractor
	cache       *Cache
	fx          *RateProvider
	logger      *common.Logger
	searchCount int
	now         func() time.Time // injectable clock for testing

	mu   sync.Mutex
	memo map[string]liveResult // per-ticker live fetch memo, cleared by InvalidateLive
}

type liveResult struct {
	price float64
	ok    bool
}

// NewResolver creates a resolver. market and search may be nil; the chain
// skips rungs whose dependencies are absent.
func NewResolver(assets interfaces.AssetSource, market interfaces.MarketDataClient, search interfaces.SearchClient, cache *Cache, logger *common.Logger) *Resolver {
	return &Resolver{
		assets:      assets,
		market:      market,
		search:      search,
		extractor:   NewExtractor(),
		cache:       cache,
		fx:          NewRateProvider(market, cache, logger),
		logger:      logger,
		searchCount: 5,
		now:         time.Now,
	}
}

// ResolvePrice returns the best available price for the asset and its
// source tag. Only an unknown asset id is an error; everything else falls
// through to the purchase price.
func (r *Resolver) ResolvePrice(ctx context.Context, assetID string) (float64, string, error) {
	asset := r.assets.Asset(assetID)
	if asset == nil {
		return 0, "", &models.NotFoundError{AssetID: assetID}
	}

	// 1. Fresh cache
	if entry, ok := r.cache.Get(assetID); ok {
		return entry.Price, entry.Source, nil
	}

	ticker := asset.MarketTicker()

	// 2. Live market API
	if ticker != "" && r.market != nil {
		if price, ok := r.fetchLive(ctx, ticker); ok {
			converted := r.convertLiveQuote(ctx, asset, price)
			r.cache.Set(ctx, assetID, converted, models.SourcePolygon)
			return converted, models.SourcePolygon, nil
		}
	}

	// 3-4. Stale cache, then web search: reached after a live failure, or
	// directly for ticker-less assets in inherently tradeable categories.
	// Ticker-less real estate, bonds, and cash fall straight to manual.
	if ticker != "" || asset.Category.Searchable() {
		if entry, ok := r.cache.GetAnyAge(assetID); ok {
			r.logger.Warn().
				Str("asset", assetID).
				Time("cached_at", entry.Timestamp).
				Str("source", entry.Source).
				Msg("Serving stale cached price")
			return entry.Price, entry.Source, nil
		}

		if r.search != nil {
			if price, source, ok := r.searchPrice(ctx, asset); ok {
				// Search snippets quote USD regardless of the asset
				converted := r.convertFromUSD(ctx, asset.Currency, price)
				r.cache.Set(ctx, assetID, converted, source)
				return converted, source, nil
			}
		}
	}

	// 5. Manual override from the asset definition
	if asset.HasManualPrice() {
		r.cache.Set(ctx, assetID, asset.UnitCurrentPrice, models.SourceManual)
		return asset.UnitCurrentPrice, models.SourceManual, nil
	}

	// 6. Purchase price, the floor of the chain
	r.logger.Warn().Str("asset", assetID).Msg("All price sources exhausted, using purchase price")
	r.cache.Set(ctx, assetID, asset.UnitPurchasePrice, models.SourceFallback)
	return asset.UnitPurchasePrice, models.SourceFallback, nil
}

// ExchangeRate returns the conversion rate between two currencies.
func (r *Resolver) ExchangeRate(ctx context.Context, from, to string) float64 {
	return r.fx.Rate(ctx, from, to)
}

// InvalidateLive drops the per-ticker live-fetch memo. Cached TTL entries
// and the cache file survive; the next resolution re-attempts the API.
func (r *Resolver) InvalidateLive() {
	r.mu.Lock()
	r.memo = nil
	r.mu.Unlock()
}

// WipeCache empties the price cache, exchange rates, and the cache file,
// and drops the live memo.
func (r *Resolver) WipeCache(ctx context.Context) error {
	r.InvalidateLive()
	return r.cache.Wipe(ctx)
}

// fetchLive returns the live market price for a ticker, memoized for the
// process. Failures are memoized too so a dead API is not hammered within
// one session.
func (r *Resolver) fetchLive(ctx context.Context, ticker string) (float64, bool) {
	r.mu.Lock()
	if res, ok := r.memo[ticker]; ok {
		r.mu.Unlock()
		return res.price, res.ok
	}
	r.mu.Unlock()

	price, ok := r.fetchMarket(ctx, ticker)

	r.mu.Lock()
	if r.memo == nil {
		r.memo = map[string]liveResult{}
	}
	r.memo[ticker] = liveResult{price: price, ok: ok}
	r.mu.Unlock()

	return price, ok
}

// fetchMarket tries previous close, then recent daily bars, then last trade.
func (r *Resolver) fetchMarket(ctx context.Context, ticker string) (float64, bool) {
	price, err := r.market.GetPreviousClose(ctx, ticker)
	if err == nil && price > 0 {
		return price, true
	}
	r.logger.Debug().Err(err).Str("ticker", ticker).Msg("Previous close unavailable")

	now := r.now()
	price, err = r.market.GetDailyClose(ctx, ticker, now.AddDate(0, 0, -liveWindowDays), now)
	if err == nil && price > 0 {
		return price, true
	}
	r.logger.Debug().Err(err).Str("ticker", ticker).Msg("Daily bars unavailable")

	price, err = r.market.GetLastTrade(ctx, ticker)
	if err == nil && price > 0 {
		return price, true
	}

	r.logger.Warn().Err(err).Str("ticker", ticker).Msg("Live market price unavailable")
	return 0, false
}

// convertLiveQuote converts a USD market quote into the asset's currency.
// Quotes are assumed USD unless the ticker is already denominated in the
// asset currency (e.g. "X:BTCEUR" for a EUR crypto asset).
func (r *Resolver) convertLiveQuote(ctx context.Context, asset *models.Asset, price float64) float64 {
	currency := strings.ToUpper(strings.TrimSpace(asset.Currency))
	if currency == "" || currency == "USD" {
		return price
	}
	if strings.Contains(strings.ToUpper(asset.MarketTicker()), currency) {
		return price
	}
	return price * r.fx.Rate(ctx, "USD", currency)
}

// convertFromUSD converts a USD price into the given currency. Unlike live
// quotes there is no ticker denomination to consider.
func (r *Resolver) convertFromUSD(ctx context.Context, currency string, price float64) float64 {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == "USD" {
		return price
	}
	return price * r.fx.Rate(ctx, "USD", currency)
}

// searchPrice queries trusted finance sites first, then the open web.
func (r *Resolver) searchPrice(ctx context.Context, asset *models.Asset) (float64, string, bool) {
	term := asset.Name
	if ticker := asset.MarketTicker(); ticker != "" {
		term = ticker + " " + asset.Name
	}

	for _, site := range trustedSites {
		query := fmt.Sprintf("site:%s %s stock price", site.domain, term)
		if price, ok := r.searchQuery(ctx, query); ok {
			r.logger.Info().Str("asset", asset.ID).Str("source", site.source).Float64("price", price).Msg("Price extracted from trusted site")
			return price, site.source, true
		}
	}

	query := fmt.Sprintf("%s current price USD", term)
	if price, ok := r.searchQuery(ctx, query); ok {
		r.logger.Info().Str("asset", asset.ID).Float64("price", price).Msg("Price extracted from open web search")
		return price, models.SourceBraveSearch, true
	}

	return 0, "", false
}

// searchQuery runs one search and extracts the first plausible price.
func (r *Resolver) searchQuery(ctx context.Context, query string) (float64, bool) {
	results, err := r.search.Search(ctx, query, r.searchCount)
	if err != nil {
		r.logger.Warn().Err(err).Str("query", query).Msg("Web search failed")
		return 0, false
	}

	for _, result := range results {
		if price, ok := r.extractor.ExtractPrice(result.Title + " " + result.Description); ok {
			return price, true
		}
	}
	return 0, false
}

// Ensure Resolver implements PriceResolver
var _ interfaces.PriceResolver = (*Resolver)(nil)
