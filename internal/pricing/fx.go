package pricing

import (
	"context"
	"strings"

	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/interfaces"
)

// fallbackRates are last-resort approximations used when both the live API
// and the cache (at any age) have nothing for the pair.
var fallbackRates = map[string]float64{
	"USDEUR": 0.92,
	"EURUSD": 1 / 0.92,
}

// RateProvider resolves currency conversion rates. It never fails: live API,
// then stale cache, then a hardcoded approximation.
type RateProvider struct {
	market interfaces.MarketDataClient
	cache  *Cache
	logger *common.Logger
}

// NewRateProvider creates a rate provider. market may be nil, in which case
// only cached and hardcoded rates are served.
func NewRateProvider(market interfaces.MarketDataClient, cache *Cache, logger *common.Logger) *RateProvider {
	return &RateProvider{market: market, cache: cache, logger: logger}
}

// Rate returns the conversion rate from one currency to another.
func (p *RateProvider) Rate(ctx context.Context, from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" || from == to {
		return 1.0
	}

	pair := from + to

	if entry, ok := p.cache.Rate(pair); ok {
		return entry.Rate
	}

	if p.market != nil {
		rate, err := p.market.GetForexPreviousClose(ctx, pair)
		if err == nil && rate > 0 {
			p.cache.SetRate(ctx, pair, rate)
			return rate
		}
		p.logger.Warn().Err(err).Str("pair", pair).Msg("Live exchange rate fetch failed")
	}

	if entry, ok := p.cache.RateAnyAge(pair); ok {
		p.logger.Warn().Str("pair", pair).Time("cached_at", entry.Timestamp).Msg("Using stale exchange rate")
		return entry.Rate
	}

	if rate, ok := fallbackRates[pair]; ok {
		p.logger.Warn().Str("pair", pair).Float64("rate", rate).Msg("Using hardcoded fallback exchange rate")
		return rate
	}

	p.logger.Warn().Str("pair", pair).Msg("No exchange rate available, assuming parity")
	return 1.0
}
