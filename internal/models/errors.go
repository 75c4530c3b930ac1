package models

import "fmt"

// NotFoundError indicates the asset id is not in the portfolio catalog.
type NotFoundError struct {
	AssetID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("asset '%s' not found in portfolio", e.AssetID)
}

// NotTradeableError indicates the best available price came from a source
// that is not reliable enough to trade against.
type NotTradeableError struct {
	AssetID string
	Name    string
	Source  string
}

func (e *NotTradeableError) Error() string {
	return fmt.Sprintf("asset '%s' is not tradeable: price source '%s' is not a live quote", e.AssetID, e.Source)
}

// InsufficientHoldingsError indicates a sell larger than the held quantity.
type InsufficientHoldingsError struct {
	AssetID   string
	Requested float64
	Available float64
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings of '%s': requested %g, available %g", e.AssetID, e.Requested, e.Available)
}
