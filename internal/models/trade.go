package models

import "time"

// TradeAction is the direction of a simulated trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// Valid reports whether the action is one of the known directions.
func (a TradeAction) Valid() bool {
	return a == ActionBuy || a == ActionSell
}

// Trade is one executed entry in the session journal.
type Trade struct {
	ID          string      `json:"id"`
	Action      TradeAction `json:"action"`
	AssetID     string      `json:"asset_id"`
	Name        string      `json:"name"`
	Quantity    float64     `json:"quantity"`
	Price       float64     `json:"price"`
	PriceSource string      `json:"price_source"`
	Fee         float64     `json:"fee"`
	// TotalCost is price*quantity+fee for buys; TotalProceeds is
	// price*quantity-fee for sells. Only one is set per trade.
	TotalCost     float64   `json:"total_cost,omitempty"`
	TotalProceeds float64   `json:"total_proceeds,omitempty"`
	Rationale     string    `json:"rationale,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
