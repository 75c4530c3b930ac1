package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/models"
	"github.com/bobmcallan/rebal/internal/portfolio"
)

// stubResolver returns canned prices per asset id.
type stubResolver struct {
	prices  map[string]float64
	sources map[string]string
}

func (s *stubResolver) ResolvePrice(_ context.Context, assetID string) (float64, string, error) {
	price, ok := s.prices[assetID]
	if !ok {
		return 0, "", &models.NotFoundError{AssetID: assetID}
	}
	source := s.sources[assetID]
	if source == "" {
		source = models.SourcePolygon
	}
	return price, source, nil
}

func (s *stubResolver) ExchangeRate(_ context.Context, _, _ string) float64 { return 1.0 }
func (s *stubResolver) InvalidateLive()                                     {}
func (s *stubResolver) WipeCache(_ context.Context) error                   { return nil }

// memStateStore keeps session state in memory.
type memStateStore struct {
	state *models.PortfolioState
}

func (m *memStateStore) LoadState(_ context.Context) (*models.PortfolioState, error) {
	return m.state, nil
}

func (m *memStateStore) SaveState(_ context.Context, state *models.PortfolioState) error {
	m.state = state
	return nil
}

func (m *memStateStore) DeleteState(_ context.Context) error {
	m.state = nil
	return nil
}

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

// testEngine builds an engine over a two-asset catalog with stubbed prices.
func testEngine(t *testing.T) *portfolio.Engine {
	t.Helper()

	config := models.PortfolioConfig{
		Name:           "Test Portfolio",
		TradingFeeRate: 0.002,
		Assets: []models.Asset{
			{ID: "apple-stock", Name: "Apple", Category: models.CategoryStock, Currency: "USD", Quantity: 10, UnitPurchasePrice: 100, Polygon: &models.PolygonDescriptor{Ticker: "AAPL"}},
			{ID: "city-flat", Name: "City Flat", Category: models.CategoryRealEstate, Currency: "EUR", Quantity: 1, UnitPurchasePrice: 250000, UnitCurrentPrice: 280000},
		},
	}
	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Failed to marshal catalog: %v", err)
	}
	path := filepath.Join(t.TempDir(), "portfolio.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	catalog, err := portfolio.LoadCatalog(path)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	resolver := &stubResolver{
		prices: map[string]float64{
			"apple-stock": 120,
			"city-flat":   280000,
		},
		sources: map[string]string{
			"apple-stock": models.SourcePolygon,
			"city-flat":   models.SourceManual,
		},
	}

	engine := portfolio.NewEngine(catalog, resolver, &memStateStore{}, testLogger())
	if err := engine.Open(context.Background()); err != nil {
		t.Fatalf("Failed to open engine: %v", err)
	}
	return engine
}
