package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/rebal/internal/models"
)

// Analysis slots persisted in the session state.
const (
	SlotPortfolioAnalysis = "portfolio_analysis"
	SlotTargetAllocation  = "target_allocation"
)

// PreTradeSnapshot returns the valuation of the inception holdings from the
// portfolio definition. It is computed once per session and reused until
// Reset; trades never invalidate it.
func (e *Engine) PreTradeSnapshot(ctx context.Context) (*models.AnalysisSnapshot, error) {
	e.mu.Lock()
	if e.preTrade != nil {
		snapshot := e.preTrade
		e.mu.Unlock()
		return snapshot, nil
	}
	e.mu.Unlock()

	holdings := map[string]models.Holding{}
	for _, asset := range e.catalog.Assets() {
		if asset.Quantity <= 0 {
			continue
		}
		holdings[asset.ID] = models.Holding{
			Category: asset.Category,
			Name:     asset.Name,
			Quantity: asset.Quantity,
			AvgPrice: asset.UnitPurchasePrice,
			Currency: asset.Currency,
		}
	}

	snapshot, err := e.computeSnapshot(ctx, holdings)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.preTrade = snapshot
	e.mu.Unlock()
	return snapshot, nil
}

// PostTradeSnapshot returns the valuation of the current ledger. It is
// memoized until a trade executes, InvalidatePostTrade is called, or the
// session resets.
func (e *Engine) PostTradeSnapshot(ctx context.Context) (*models.AnalysisSnapshot, error) {
	e.mu.Lock()
	if e.postTrade != nil {
		snapshot := e.postTrade
		e.mu.Unlock()
		return snapshot, nil
	}
	holdings := make(map[string]models.Holding, len(e.state.Holdings))
	for id, h := range e.state.Holdings {
		holdings[id] = h
	}
	e.mu.Unlock()

	snapshot, err := e.computeSnapshot(ctx, holdings)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.postTrade = snapshot
	e.mu.Unlock()
	return snapshot, nil
}

// InvalidatePostTrade drops the current-ledger snapshot memo.
func (e *Engine) InvalidatePostTrade() {
	e.mu.Lock()
	e.postTrade = nil
	e.mu.Unlock()
}

// RegenerateAnalysis forces a fresh valuation: the resolver's live memo is
// dropped so prices re-hit the market API, and the post-trade memo is
// recomputed.
func (e *Engine) RegenerateAnalysis(ctx context.Context) (*models.AnalysisSnapshot, error) {
	e.resolver.InvalidateLive()
	e.InvalidatePostTrade()
	return e.PostTradeSnapshot(ctx)
}

// SaveAnalysis stores commentary plus the current computed snapshot under
// one of the two analysis slots and persists the state.
func (e *Engine) SaveAnalysis(ctx context.Context, slot, commentary string) error {
	if slot != SlotPortfolioAnalysis && slot != SlotTargetAllocation {
		return fmt.Errorf("unknown analysis slot '%s': must be %s or %s", slot, SlotPortfolioAnalysis, SlotTargetAllocation)
	}

	snapshot, err := e.PostTradeSnapshot(ctx)
	if err != nil {
		return err
	}

	record := &models.AnalysisRecord{
		Snapshot:   snapshot,
		Commentary: commentary,
		SavedAt:    e.now(),
	}

	e.mu.Lock()
	switch slot {
	case SlotPortfolioAnalysis:
		e.state.Analysis.PortfolioAnalysis = record
	case SlotTargetAllocation:
		e.state.Analysis.TargetAllocation = record
	}
	state := e.state
	e.mu.Unlock()

	if err := e.store.SaveState(ctx, state); err != nil {
		return fmt.Errorf("failed to persist analysis: %w", err)
	}

	e.logger.Info().Str("slot", slot).Msg("Analysis saved")
	return nil
}

// Analysis returns the persisted analysis records.
func (e *Engine) Analysis() models.AnalysisSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Analysis
}

// computeSnapshot values a set of holdings through the resolver and builds
// the rounded snapshot: totals, cost basis, performance, allocation.
func (e *Engine) computeSnapshot(ctx context.Context, holdings map[string]models.Holding) (*models.AnalysisSnapshot, error) {
	ids := make([]string, 0, len(holdings))
	for id := range holdings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := decimal.Zero
	cost := decimal.Zero
	values := map[models.AssetCategory]float64{}
	lines := make([]models.SnapshotHolding, 0, len(ids))

	for _, id := range ids {
		holding := holdings[id]

		price, source, err := e.resolver.ResolvePrice(ctx, id)
		if err != nil {
			return nil, err
		}

		value := decimal.NewFromFloat(holding.Quantity).Mul(decimal.NewFromFloat(price))
		total = total.Add(value)
		cost = cost.Add(decimal.NewFromFloat(holding.Quantity).Mul(decimal.NewFromFloat(holding.AvgPrice)))
		values[holding.Category] += value.InexactFloat64()

		lines = append(lines, models.SnapshotHolding{
			AssetID:     id,
			Name:        holding.Name,
			Category:    holding.Category,
			Quantity:    holding.Quantity,
			Price:       round2(price),
			PriceSource: source,
			Value:       round2(value.InexactFloat64()),
		})
	}

	allocation, _ := Allocation(values)

	totalValue := round2(total.InexactFloat64())
	costBasis := round2(cost.InexactFloat64())
	perfAbs := round2(totalValue - costBasis)
	perfPct := 0.0
	if costBasis > 0 {
		perfPct = round2(perfAbs / costBasis * 100)
	}

	return &models.AnalysisSnapshot{
		TotalValue:          totalValue,
		CostBasis:           costBasis,
		PerformanceAbsolute: perfAbs,
		PerformancePercent:  perfPct,
		Allocation:          fillCategories(allocation),
		Holdings:            lines,
		GeneratedAt:         e.now(),
	}, nil
}

// StateView is the full session picture returned by the state operation.
type StateView struct {
	Portfolio       string                   `json:"portfolio"`
	InvestorProfile string                   `json:"investor_profile,omitempty"`
	TradingFeeRate  float64                  `json:"trading_fee_rate"`
	Snapshot        *models.AnalysisSnapshot `json:"snapshot"`
	TradeCount      int                      `json:"trade_count"`
	GeneratedAt     time.Time                `json:"generated_at"`
}

// State returns the current session view: valued holdings, allocation,
// totals, and catalog metadata. Like the other read operations, it drops
// the resolver's live memo first so expired cache entries re-attempt the
// market API instead of replaying a memoized result.
func (e *Engine) State(ctx context.Context) (*StateView, error) {
	e.resolver.InvalidateLive()

	snapshot, err := e.PostTradeSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	tradeCount := len(e.state.Trades)
	e.mu.Unlock()

	return &StateView{
		Portfolio:       e.catalog.Name(),
		InvestorProfile: e.catalog.InvestorProfile(),
		TradingFeeRate:  e.catalog.TradingFeeRate(),
		Snapshot:        snapshot,
		TradeCount:      tradeCount,
		GeneratedAt:     e.now(),
	}, nil
}
