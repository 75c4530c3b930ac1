// Package models contains the core data structures for Rebal
package models

// AssetCategory classifies an asset for allocation reporting.
type AssetCategory string

const (
	CategoryStock      AssetCategory = "stock"
	CategoryBond       AssetCategory = "bond"
	CategoryCrypto     AssetCategory = "crypto"
	CategoryRealEstate AssetCategory = "real_estate"
	CategoryCash       AssetCategory = "cash"
)

// AllCategories returns every known category in reporting order.
func AllCategories() []AssetCategory {
	return []AssetCategory{
		CategoryStock,
		CategoryBond,
		CategoryCrypto,
		CategoryRealEstate,
		CategoryCash,
	}
}

// Searchable reports whether web search is a sensible price source for the
// category. Illiquid or fixed-value categories never go to search; they fall
// straight through to manual and purchase prices.
func (c AssetCategory) Searchable() bool {
	switch c {
	case CategoryRealEstate, CategoryBond, CategoryCash:
		return false
	}
	return true
}

// PolygonDescriptor links an asset to its market data symbol.
type PolygonDescriptor struct {
	Ticker string `json:"ticker"`
}

// Asset is one entry in the portfolio definition file.
type Asset struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Category          AssetCategory      `json:"type"`
	Currency          string             `json:"currency"`
	Quantity          float64            `json:"quantity"`
	UnitPurchasePrice float64            `json:"unit_purchase_price"`
	UnitCurrentPrice  float64            `json:"unit_current_price,omitempty"` // manual override, 0 = unset
	Polygon           *PolygonDescriptor `json:"polygon,omitempty"`            // absent = no live quotes
}

// MarketTicker returns the asset's market data symbol, or "" when the
// definition carries none.
func (a *Asset) MarketTicker() string {
	if a.Polygon == nil {
		return ""
	}
	return a.Polygon.Ticker
}

// HasManualPrice reports whether the definition carries a manual price override.
func (a *Asset) HasManualPrice() bool {
	return a.UnitCurrentPrice > 0
}

// PortfolioConfig is the asset catalog and session parameters loaded at startup.
type PortfolioConfig struct {
	Name            string  `json:"name"`
	TradingFeeRate  float64 `json:"trading_fee"`
	InvestorProfile string  `json:"investor_profile,omitempty"`
	Assets          []Asset `json:"assets"`
}

// Asset returns the asset with the given id, or nil when unknown.
func (p *PortfolioConfig) Asset(id string) *Asset {
	for i := range p.Assets {
		if p.Assets[i].ID == id {
			return &p.Assets[i]
		}
	}
	return nil
}
