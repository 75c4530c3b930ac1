package models

// Holding is a position in the simulated ledger, keyed by asset id in the
// session state. AvgPrice is the weighted-average cost basis, recomputed on
// buys only.
type Holding struct {
	Category AssetCategory `json:"type"`
	Name     string        `json:"name"`
	Quantity float64       `json:"quantity"`
	AvgPrice float64       `json:"avg_price"`
	Currency string        `json:"currency,omitempty"`
}
