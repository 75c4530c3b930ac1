// Package pricing implements price resolution with TTL caching and a
// layered fallback chain.
package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/interfaces"
	"github.com/bobmcallan/rebal/internal/models"
)

// Cache holds resolved prices and exchange rates in memory with TTL
// freshness checks, and write-through persists every update to the cache
// file so a restarted session can still serve stale reads.
type Cache struct {
	store    interfaces.CacheStore
	logger   *common.Logger
	priceTTL time.Duration
	rateTTL  time.Duration
	now      func() time.Time // injectable clock for testing

	mu     sync.RWMutex
	prices map[string]models.CachedPrice
	rates  map[string]models.ExchangeRateEntry
}

// NewCache creates an empty cache. store may be nil, in which case the
// cache is memory-only.
func NewCache(store interfaces.CacheStore, logger *common.Logger, priceTTL, rateTTL time.Duration) *Cache {
	if priceTTL <= 0 {
		priceTTL = common.FreshnessPrice
	}
	if rateTTL <= 0 {
		rateTTL = common.FreshnessExchangeRate
	}
	return &Cache{
		store:    store,
		logger:   logger,
		priceTTL: priceTTL,
		rateTTL:  rateTTL,
		now:      time.Now,
		prices:   map[string]models.CachedPrice{},
		rates:    map[string]models.ExchangeRateEntry{},
	}
}

// Load reads the persisted cache file. A missing file starts empty; a
// corrupt file starts empty with a warning. Neither is fatal.
func (c *Cache) Load(ctx context.Context) {
	if c.store == nil {
		return
	}

	saved, err := c.store.LoadCache(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Price cache file unreadable, starting with empty cache")
		return
	}
	if saved == nil {
		return
	}

	c.mu.Lock()
	c.prices = saved.Prices
	c.rates = saved.ExchangeRates
	c.mu.Unlock()

	c.logger.Debug().Int("prices", len(saved.Prices)).Int("rates", len(saved.ExchangeRates)).Msg("Price cache loaded")
}

// Get returns a cached price only when it is within the TTL.
func (c *Cache) Get(assetID string) (models.CachedPrice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.prices[assetID]
	if !ok || !common.IsFreshAt(entry.Timestamp, c.priceTTL, c.now()) {
		return models.CachedPrice{}, false
	}
	return entry, true
}

// GetAnyAge returns a cached price regardless of age.
func (c *Cache) GetAnyAge(assetID string) (models.CachedPrice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.prices[assetID]
	return entry, ok
}

// Set records a price with its source and persists the cache.
func (c *Cache) Set(ctx context.Context, assetID string, price float64, source string) {
	c.mu.Lock()
	c.prices[assetID] = models.CachedPrice{
		Price:     price,
		Source:    source,
		Timestamp: c.now(),
	}
	c.mu.Unlock()

	c.persist(ctx)
}

// Rate returns a cached exchange rate only when it is within the TTL.
func (c *Cache) Rate(pair string) (models.ExchangeRateEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.rates[pair]
	if !ok || !common.IsFreshAt(entry.Timestamp, c.rateTTL, c.now()) {
		return models.ExchangeRateEntry{}, false
	}
	return entry, true
}

// RateAnyAge returns a cached exchange rate regardless of age.
func (c *Cache) RateAnyAge(pair string) (models.ExchangeRateEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.rates[pair]
	return entry, ok
}

// SetRate records an exchange rate and persists the cache.
func (c *Cache) SetRate(ctx context.Context, pair string, rate float64) {
	c.mu.Lock()
	c.rates[pair] = models.ExchangeRateEntry{
		Rate:      rate,
		Timestamp: c.now(),
	}
	c.mu.Unlock()

	c.persist(ctx)
}

// Wipe empties prices and rates and removes the cache file.
func (c *Cache) Wipe(ctx context.Context) error {
	c.mu.Lock()
	c.prices = map[string]models.CachedPrice{}
	c.rates = map[string]models.ExchangeRateEntry{}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.DeleteCache(ctx); err != nil {
		return err
	}
	c.logger.Debug().Msg("Price cache wiped")
	return nil
}

// persist write-through saves the full cache. Persistence failures degrade
// to memory-only operation with a warning.
func (c *Cache) persist(ctx context.Context) {
	if c.store == nil {
		return
	}

	c.mu.RLock()
	snapshot := &models.PriceCacheFile{
		Prices:        make(map[string]models.CachedPrice, len(c.prices)),
		ExchangeRates: make(map[string]models.ExchangeRateEntry, len(c.rates)),
		SavedAt:       c.now(),
	}
	for k, v := range c.prices {
		snapshot.Prices[k] = v
	}
	for k, v := range c.rates {
		snapshot.ExchangeRates[k] = v
	}
	c.mu.RUnlock()

	if err := c.store.SaveCache(ctx, snapshot); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist price cache")
	}
}
