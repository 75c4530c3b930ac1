package models

// Price source tags. A trade may only execute against a live, verifiable
// quote; manual overrides and purchase-price fallbacks are informational.
const (
	SourcePolygon       = "Polygon API"
	SourceGoogleFinance = "Google Finance"
	SourceYahooFinance  = "Yahoo Finance"
	SourceMarketWatch   = "MarketWatch"
	SourceBraveSearch   = "Brave Search"
	SourceManual        = "manual"
	SourceFallback      = "fallback"
)

// tradeableSources is the single authority on which price sources permit
// trading. Nothing else in the codebase hardcodes this set.
var tradeableSources = map[string]struct{}{
	SourcePolygon:       {},
	SourceGoogleFinance: {},
	SourceYahooFinance:  {},
	SourceMarketWatch:   {},
	SourceBraveSearch:   {},
}

// IsTradeableSource reports whether a price with the given source tag is
// reliable enough to execute a simulated trade against.
func IsTradeableSource(source string) bool {
	_, ok := tradeableSources[source]
	return ok
}
