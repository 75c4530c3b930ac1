package portfolio

import (
	"math"

	"github.com/bobmcallan/rebal/internal/models"
)

// Allocation converts per-category values into percentages of the total.
// A zero or negative total yields an empty map: no division, no NaN.
func Allocation(values map[models.AssetCategory]float64) (map[models.AssetCategory]float64, float64) {
	total := 0.0
	for _, v := range values {
		total += v
	}

	if total <= 0 {
		return map[models.AssetCategory]float64{}, 0
	}

	percentages := make(map[models.AssetCategory]float64, len(values))
	for category, value := range values {
		percentages[category] = round1(value / total * 100)
	}
	return percentages, total
}

// fillCategories ensures every known category appears in the map, zero-filled.
func fillCategories(allocation map[models.AssetCategory]float64) map[models.AssetCategory]float64 {
	for _, category := range models.AllCategories() {
		if _, ok := allocation[category]; !ok {
			allocation[category] = 0
		}
	}
	return allocation
}

// round2 rounds to 2 decimals for monetary values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds to 1 decimal for percentages.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
