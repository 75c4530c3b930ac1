package portfolio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/rebal/internal/models"
)

func TestPostTradeSnapshot(t *testing.T) {
	engine := newTestEngine(t, livePrices(), nil)

	snapshot, err := engine.PostTradeSnapshot(context.Background())
	require.NoError(t, err)

	// 10*120 + 5*210 = 2250 current; cost basis 10*100 + 5*200 = 2000
	assert.Equal(t, 2250.0, snapshot.TotalValue)
	assert.Equal(t, 2000.0, snapshot.CostBasis)
	assert.Equal(t, 250.0, snapshot.PerformanceAbsolute)
	assert.Equal(t, 12.5, snapshot.PerformancePercent)

	require.Len(t, snapshot.Holdings, 2)
	assert.Equal(t, "eu-stock", snapshot.Holdings[0].AssetID, "holdings sorted by id")
	assert.Equal(t, "us-stock", snapshot.Holdings[1].AssetID)
	assert.Equal(t, models.SourcePolygon, snapshot.Holdings[1].PriceSource)
	assert.Equal(t, 1200.0, snapshot.Holdings[1].Value)

	// Every category present, zero-filled where empty
	assert.Len(t, snapshot.Allocation, len(models.AllCategories()))
	assert.Equal(t, 100.0, snapshot.Allocation[models.CategoryStock])
	assert.Equal(t, 0.0, snapshot.Allocation[models.CategoryBond])
}

func TestPostTradeSnapshot_Memoized(t *testing.T) {
	resolver := livePrices()
	engine := newTestEngine(t, resolver, nil)
	ctx := context.Background()

	first, err := engine.PostTradeSnapshot(ctx)
	require.NoError(t, err)
	callsAfterFirst := resolver.resolveCalls

	second, err := engine.PostTradeSnapshot(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, callsAfterFirst, resolver.resolveCalls, "memoized snapshot skips the resolver")
}

func TestPostTradeSnapshot_InvalidatedByTrade(t *testing.T) {
	engine := newTestEngine(t, livePrices(), nil)
	ctx := context.Background()

	before, err := engine.PostTradeSnapshot(ctx)
	require.NoError(t, err)

	_, err = engine.ExecuteTrade(ctx, TradeRequest{Action: models.ActionSell, AssetID: "us-stock", Quantity: 5})
	require.NoError(t, err)

	after, err := engine.PostTradeSnapshot(ctx)
	require.NoError(t, err)

	assert.NotSame(t, before, after)
	// 5*120 + 5*210 = 1650
	assert.Equal(t, 1650.0, after.TotalValue)
}

func TestPreTradeSnapshot_StableAcrossTrades(t *testing.T) {
	engine := newTestEngine(t, livePrices(), nil)
	ctx := context.Background()

	before, err := engine.PreTradeSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2250.0, before.TotalValue)

	_, err = engine.ExecuteTrade(ctx, TradeRequest{Action: models.ActionSell, AssetID: "eu-stock", Quantity: 5})
	require.NoError(t, err)

	after, err := engine.PreTradeSnapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, before, after, "inception snapshot survives trades")
}

func TestRegenerateAnalysis(t *testing.T) {
	resolver := livePrices()
	engine := newTestEngine(t, resolver, nil)
	ctx := context.Background()

	stale, err := engine.PostTradeSnapshot(ctx)
	require.NoError(t, err)

	fresh, err := engine.RegenerateAnalysis(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, resolver.invalidated, "live memo dropped before re-pricing")
	assert.NotSame(t, stale, fresh)
}

func TestSaveAnalysis(t *testing.T) {
	store := &mockStateStore{}
	engine := newTestEngine(t, livePrices(), store)
	ctx := context.Background()

	require.NoError(t, engine.SaveAnalysis(ctx, SlotPortfolioAnalysis, "overweight equities, trim into bonds"))

	analysis := engine.Analysis()
	require.NotNil(t, analysis.PortfolioAnalysis)
	assert.Equal(t, "overweight equities, trim into bonds", analysis.PortfolioAnalysis.Commentary)
	assert.Equal(t, 2250.0, analysis.PortfolioAnalysis.Snapshot.TotalValue)
	assert.Nil(t, analysis.TargetAllocation)

	require.NoError(t, engine.SaveAnalysis(ctx, SlotTargetAllocation, "target 60/40"))
	analysis = engine.Analysis()
	require.NotNil(t, analysis.TargetAllocation)
	assert.Equal(t, "target 60/40", analysis.TargetAllocation.Commentary)
	// First slot untouched by the second save
	assert.Equal(t, "overweight equities, trim into bonds", analysis.PortfolioAnalysis.Commentary)

	// Persisted
	require.NotNil(t, store.saved.Analysis.PortfolioAnalysis)
	require.NotNil(t, store.saved.Analysis.TargetAllocation)
}

func TestSaveAnalysis_UnknownSlot(t *testing.T) {
	engine := newTestEngine(t, livePrices(), nil)

	err := engine.SaveAnalysis(context.Background(), "quarterly_review", "notes")
	assert.ErrorContains(t, err, "unknown analysis slot")
}

func TestReset_ClearsSnapshotsAndAnalysis(t *testing.T) {
	engine := newTestEngine(t, livePrices(), nil)
	ctx := context.Background()

	require.NoError(t, engine.SaveAnalysis(ctx, SlotPortfolioAnalysis, "pre-reset notes"))
	before, err := engine.PostTradeSnapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, engine.Reset(ctx))

	analysis := engine.Analysis()
	assert.Nil(t, analysis.PortfolioAnalysis, "saved analysis cleared by reset")

	after, err := engine.PostTradeSnapshot(ctx)
	require.NoError(t, err)
	assert.NotSame(t, before, after)
}

func TestState(t *testing.T) {
	engine := newTestEngine(t, livePrices(), nil)
	ctx := context.Background()

	_, err := engine.ExecuteTrade(ctx, TradeRequest{Action: models.ActionBuy, AssetID: "us-stock", Quantity: 1})
	require.NoError(t, err)

	view, err := engine.State(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Growth", view.Portfolio)
	assert.Equal(t, "long-horizon, risk tolerant", view.InvestorProfile)
	assert.Equal(t, 0.002, view.TradingFeeRate)
	assert.Equal(t, 1, view.TradeCount)
	require.NotNil(t, view.Snapshot)
	// 11*120 + 5*210 = 2370
	assert.Equal(t, 2370.0, view.Snapshot.TotalValue)
}
