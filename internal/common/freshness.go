// Package common provides shared utilities for Rebal
package common

import "time"

// Freshness TTLs for cached market data
const (
	FreshnessPrice        = 15 * time.Minute // resolved asset prices
	FreshnessExchangeRate = 60 * time.Minute // FX rates move slowly
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}

// IsFreshAt reports freshness against an explicit reference time.
// Services with injectable clocks use this instead of IsFresh.
func IsFreshAt(updated time.Time, ttl time.Duration, now time.Time) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
