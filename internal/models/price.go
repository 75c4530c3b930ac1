package models

import "time"

// CachedPrice is one resolved price held in the TTL cache.
type CachedPrice struct {
	Price     float64   `json:"price"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// ExchangeRateEntry is one cached FX rate, keyed by pair (e.g. "USDEUR").
type ExchangeRateEntry struct {
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

// PriceCacheFile is the on-disk shape of the persisted price cache.
type PriceCacheFile struct {
	Prices        map[string]CachedPrice       `json:"prices"`
	ExchangeRates map[string]ExchangeRateEntry `json:"exchange_rates"`
	SavedAt       time.Time                    `json:"saved_at"`
}
