package models

import "time"

// SnapshotHolding is one valued position inside an analysis snapshot.
type SnapshotHolding struct {
	AssetID     string        `json:"asset_id"`
	Name        string        `json:"name"`
	Category    AssetCategory `json:"type"`
	Quantity    float64       `json:"quantity"`
	Price       float64       `json:"price"`
	PriceSource string        `json:"price_source"`
	Value       float64       `json:"value"`
}

// AnalysisSnapshot is a point-in-time valuation of a set of holdings.
// Monetary values are rounded to 2 decimals, allocation percentages to 1.
type AnalysisSnapshot struct {
	TotalValue          float64                   `json:"total_value"`
	CostBasis           float64                   `json:"cost_basis"`
	PerformanceAbsolute float64                   `json:"performance_absolute"`
	PerformancePercent  float64                   `json:"performance_percent"`
	Allocation          map[AssetCategory]float64 `json:"allocation"`
	Holdings            []SnapshotHolding         `json:"holdings"`
	GeneratedAt         time.Time                 `json:"generated_at"`
}

// AnalysisRecord pairs a computed snapshot with free-text commentary from
// the client, persisted in the session state.
type AnalysisRecord struct {
	Snapshot   *AnalysisSnapshot `json:"computed,omitempty"`
	Commentary string            `json:"commentary,omitempty"`
	SavedAt    time.Time         `json:"saved_at"`
}

// AnalysisSet holds the two persisted analysis slots.
type AnalysisSet struct {
	PortfolioAnalysis *AnalysisRecord `json:"portfolio_analysis"`
	TargetAllocation  *AnalysisRecord `json:"target_allocation"`
}

// PortfolioState is the on-disk shape of the persisted session.
type PortfolioState struct {
	Trades   []Trade            `json:"trades"`
	Holdings map[string]Holding `json:"holdings"`
	Analysis AnalysisSet        `json:"analysis"`
}

// NewPortfolioState returns an empty state with initialized collections.
func NewPortfolioState() *PortfolioState {
	return &PortfolioState{
		Trades:   []Trade{},
		Holdings: map[string]Holding{},
	}
}

// PerformanceReport compares the current portfolio value against inception.
type PerformanceReport struct {
	InitialValue       float64   `json:"initial_value"`
	CurrentValue       float64   `json:"current_value"`
	NetChange          float64   `json:"net_change"`
	NetChangePct       float64   `json:"net_change_pct"`
	NetChangeAfterFees float64   `json:"net_change_after_fees"`
	TotalFeesPaid      float64   `json:"total_fees_paid"`
	TradeCount         int       `json:"trade_count"`
	GeneratedAt        time.Time `json:"generated_at"`
}
