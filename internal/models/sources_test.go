package models

import "testing"

func TestIsTradeableSource(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{SourcePolygon, true},
		{SourceGoogleFinance, true},
		{SourceYahooFinance, true},
		{SourceMarketWatch, true},
		{SourceBraveSearch, true},
		{SourceManual, false},
		{SourceFallback, false},
		{"", false},
		{"polygon api", false}, // tags are case sensitive
	}
	for _, tt := range tests {
		if got := IsTradeableSource(tt.source); got != tt.want {
			t.Errorf("IsTradeableSource(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestCategorySearchable(t *testing.T) {
	tests := []struct {
		category AssetCategory
		want     bool
	}{
		{CategoryStock, true},
		{CategoryCrypto, true},
		{CategoryBond, false},
		{CategoryRealEstate, false},
		{CategoryCash, false},
	}
	for _, tt := range tests {
		if got := tt.category.Searchable(); got != tt.want {
			t.Errorf("%s.Searchable() = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestPortfolioConfigAsset(t *testing.T) {
	cfg := &PortfolioConfig{
		Assets: []Asset{
			{ID: "aapl", Name: "Apple"},
			{ID: "btc", Name: "Bitcoin"},
		},
	}

	if a := cfg.Asset("btc"); a == nil || a.Name != "Bitcoin" {
		t.Errorf("Asset(btc) = %+v, want Bitcoin", a)
	}
	if a := cfg.Asset("missing"); a != nil {
		t.Errorf("Asset(missing) = %+v, want nil", a)
	}
}

func TestTradeActionValid(t *testing.T) {
	if !ActionBuy.Valid() || !ActionSell.Valid() {
		t.Error("buy and sell should be valid actions")
	}
	if TradeAction("hold").Valid() {
		t.Error("hold is not a valid action")
	}
}
