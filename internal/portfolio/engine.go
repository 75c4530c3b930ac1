package portfolio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/interfaces"
	"github.com/bobmcallan/rebal/internal/models"
)

// Engine owns all session state: the holdings ledger, the trade journal,
// saved analysis, and the snapshot memos. Nothing here is global; one Engine
// is one session.
type Engine struct {
	catalog  *Catalog
	resolver interfaces.PriceResolver
	store    interfaces.StateStore
	logger   *common.Logger
	now      func() time.Time // injectable clock for testing
	newID    func() string    // injectable id generator for testing

	mu        sync.Mutex
	state     *models.PortfolioState
	preTrade  *models.AnalysisSnapshot
	postTrade *models.AnalysisSnapshot
}

// NewEngine creates an engine over a loaded catalog. Call Open before use.
func NewEngine(catalog *Catalog, resolver interfaces.PriceResolver, store interfaces.StateStore, logger *common.Logger) *Engine {
	return &Engine{
		catalog:  catalog,
		resolver: resolver,
		store:    store,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Open loads the persisted session state. A missing state file seeds a
// fresh session from the catalog; a corrupt one does the same with a
// warning, never a crash.
func (e *Engine) Open(ctx context.Context) error {
	state, err := e.store.LoadState(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("State file unreadable, starting a fresh session")
		state = nil
	}
	if state == nil {
		state = e.seedState()
		if err := e.store.SaveState(ctx, state); err != nil {
			return fmt.Errorf("failed to initialize session state: %w", err)
		}
		e.logger.Info().Int("holdings", len(state.Holdings)).Msg("Session seeded from portfolio definition")
	} else {
		e.logger.Info().
			Int("trades", len(state.Trades)).
			Int("holdings", len(state.Holdings)).
			Msg("Session state loaded")
	}

	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
	return nil
}

// seedState builds the inception ledger from the catalog definition: every
// asset with a positive quantity becomes a holding at its purchase price.
func (e *Engine) seedState() *models.PortfolioState {
	state := models.NewPortfolioState()
	for _, asset := range e.catalog.Assets() {
		if asset.Quantity <= 0 {
			continue
		}
		state.Holdings[asset.ID] = models.Holding{
			Category: asset.Category,
			Name:     asset.Name,
			Quantity: asset.Quantity,
			AvgPrice: asset.UnitPurchasePrice,
			Currency: asset.Currency,
		}
	}
	return state
}

// Holdings returns a copy of the current ledger.
func (e *Engine) Holdings() map[string]models.Holding {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]models.Holding, len(e.state.Holdings))
	for id, h := range e.state.Holdings {
		out[id] = h
	}
	return out
}

// Trades returns a copy of the trade journal in execution order.
func (e *Engine) Trades() []models.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Trade, len(e.state.Trades))
	copy(out, e.state.Trades)
	return out
}

// TradeRequest describes a simulated trade to execute.
type TradeRequest struct {
	Action    models.TradeAction
	AssetID   string
	Quantity  float64
	Rationale string
}

// ExecuteTrade resolves the asset's price, checks the source is tradeable,
// applies the trade to the ledger, journals it, and persists the state.
func (e *Engine) ExecuteTrade(ctx context.Context, req TradeRequest) (*models.Trade, error) {
	e.resolver.InvalidateLive()

	if !req.Action.Valid() {
		return nil, fmt.Errorf("invalid trade action '%s': must be buy or sell", req.Action)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("trade quantity must be positive, got %g", req.Quantity)
	}

	asset := e.catalog.Asset(req.AssetID)
	if asset == nil {
		return nil, &models.NotFoundError{AssetID: req.AssetID}
	}

	price, source, err := e.resolver.ResolvePrice(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}
	if !models.IsTradeableSource(source) {
		return nil, &models.NotTradeableError{AssetID: req.AssetID, Name: asset.Name, Source: source}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	qty := decimal.NewFromFloat(req.Quantity)
	priceDec := decimal.NewFromFloat(price)
	fee := priceDec.Mul(qty).Mul(decimal.NewFromFloat(e.catalog.TradingFeeRate()))
	gross := priceDec.Mul(qty)

	trade := models.Trade{
		ID:          e.newID(),
		Action:      req.Action,
		AssetID:     req.AssetID,
		Name:        asset.Name,
		Quantity:    req.Quantity,
		Price:       price,
		PriceSource: source,
		Fee:         fee.InexactFloat64(),
		Rationale:   req.Rationale,
		Timestamp:   e.now(),
	}

	holding, held := e.state.Holdings[req.AssetID]

	switch req.Action {
	case models.ActionBuy:
		oldQty := decimal.NewFromFloat(holding.Quantity)
		newQty := oldQty.Add(qty)
		// Weighted-average cost, recomputed on buys only
		oldCost := oldQty.Mul(decimal.NewFromFloat(holding.AvgPrice))
		avg := oldCost.Add(gross).Div(newQty)

		if !held {
			holding = models.Holding{
				Category: asset.Category,
				Name:     asset.Name,
				Currency: asset.Currency,
			}
		}
		holding.Quantity = newQty.InexactFloat64()
		holding.AvgPrice = avg.InexactFloat64()
		e.state.Holdings[req.AssetID] = holding

		trade.TotalCost = gross.Add(fee).InexactFloat64()

	case models.ActionSell:
		available := 0.0
		if held {
			available = holding.Quantity
		}
		if !held || available < req.Quantity {
			return nil, &models.InsufficientHoldingsError{
				AssetID:   req.AssetID,
				Requested: req.Quantity,
				Available: available,
			}
		}

		remaining := decimal.NewFromFloat(available).Sub(qty)
		if remaining.IsZero() {
			delete(e.state.Holdings, req.AssetID)
		} else {
			// Average cost is unchanged by sells
			holding.Quantity = remaining.InexactFloat64()
			e.state.Holdings[req.AssetID] = holding
		}

		trade.TotalProceeds = gross.Sub(fee).InexactFloat64()
	}

	e.state.Trades = append(e.state.Trades, trade)
	e.postTrade = nil // the current-ledger snapshot is now stale

	if err := e.store.SaveState(ctx, e.state); err != nil {
		return nil, fmt.Errorf("trade executed but state persistence failed: %w", err)
	}

	e.logger.Info().
		Str("trade", trade.ID).
		Str("action", string(trade.Action)).
		Str("asset", trade.AssetID).
		Float64("quantity", trade.Quantity).
		Float64("price", trade.Price).
		Str("source", trade.PriceSource).
		Msg("Trade executed")

	return &trade, nil
}

// Reset returns the session to inception: clears the journal and analysis,
// reloads the catalog, and reseeds the ledger. The price cache is left
// intact so a reset does not re-hammer rate-limited APIs; only the
// resolver's live memo is dropped. Calling it on an already-fresh session
// is harmless.
func (e *Engine) Reset(ctx context.Context) error {
	if err := e.catalog.Reload(); err != nil {
		return fmt.Errorf("failed to reload portfolio definition: %w", err)
	}

	e.mu.Lock()
	e.state = e.seedState()
	e.preTrade = nil
	e.postTrade = nil
	state := e.state
	e.mu.Unlock()

	e.resolver.InvalidateLive()

	if err := e.store.SaveState(ctx, state); err != nil {
		return fmt.Errorf("failed to persist reset state: %w", err)
	}

	e.logger.Info().Msg("Session reset to inception")
	return nil
}

// Performance compares current portfolio value against inception cost and
// totals the fees paid across the journal.
func (e *Engine) Performance(ctx context.Context) (*models.PerformanceReport, error) {
	e.resolver.InvalidateLive()

	snapshot, err := e.PostTradeSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	initial := decimal.Zero
	for _, asset := range e.catalog.Assets() {
		initial = initial.Add(decimal.NewFromFloat(asset.Quantity).Mul(decimal.NewFromFloat(asset.UnitPurchasePrice)))
	}

	e.mu.Lock()
	fees := decimal.Zero
	for _, t := range e.state.Trades {
		fees = fees.Add(decimal.NewFromFloat(t.Fee))
	}
	tradeCount := len(e.state.Trades)
	e.mu.Unlock()

	initialValue := round2(initial.InexactFloat64())
	netChange := round2(snapshot.TotalValue - initialValue)
	netPct := 0.0
	if initialValue > 0 {
		netPct = round2(netChange / initialValue * 100)
	}

	totalFees := round2(fees.InexactFloat64())

	return &models.PerformanceReport{
		InitialValue:       initialValue,
		CurrentValue:       snapshot.TotalValue,
		NetChange:          netChange,
		NetChangePct:       netPct,
		NetChangeAfterFees: round2(netChange - totalFees),
		TotalFeesPaid:      totalFees,
		TradeCount:         tradeCount,
		GeneratedAt:        e.now(),
	}, nil
}

// TradeableAsset is a catalog entry whose current price source permits trading.
type TradeableAsset struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Category models.AssetCategory `json:"type"`
	Price    float64              `json:"price"`
	Source   string               `json:"source"`
}

// TradeableAssets resolves every catalog asset and returns those whose
// price source is tradeable.
func (e *Engine) TradeableAssets(ctx context.Context) ([]TradeableAsset, error) {
	e.resolver.InvalidateLive()

	var out []TradeableAsset
	for _, asset := range e.catalog.Assets() {
		price, source, err := e.resolver.ResolvePrice(ctx, asset.ID)
		if err != nil {
			return nil, err
		}
		if !models.IsTradeableSource(source) {
			continue
		}
		out = append(out, TradeableAsset{
			ID:       asset.ID,
			Name:     asset.Name,
			Category: asset.Category,
			Price:    round2(price),
			Source:   source,
		})
	}
	return out, nil
}

// AssetPrice resolves a single asset and reports whether it can be traded.
type AssetPrice struct {
	AssetID   string  `json:"asset_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Source    string  `json:"source"`
	Tradeable bool    `json:"tradeable"`
	Currency  string  `json:"currency,omitempty"`
}

// Price resolves one asset's price through the fallback chain.
func (e *Engine) Price(ctx context.Context, assetID string) (*AssetPrice, error) {
	e.resolver.InvalidateLive()

	asset := e.catalog.Asset(assetID)
	if asset == nil {
		return nil, &models.NotFoundError{AssetID: assetID}
	}

	price, source, err := e.resolver.ResolvePrice(ctx, assetID)
	if err != nil {
		return nil, err
	}

	return &AssetPrice{
		AssetID:   assetID,
		Name:      asset.Name,
		Price:     round2(price),
		Source:    source,
		Tradeable: models.IsTradeableSource(source),
		Currency:  asset.Currency,
	}, nil
}
