// Package valuation implements the multi-method sale price estimation
// engine: three independent valuation approaches and the aggregator that
// combines them into a weighted estimate with a confidence score.
package valuation

import (
	"math"

	"estatewise/server/internal/models"
)

// MarketData is the slice of the market data source the approaches consume.
type MarketData interface {
	LandPrice(address string) models.LandPrice
	AreaYieldRate(address string) float64
	ComparableSales(lat, lon float64, propertyType models.PropertyType, buildingAge int, floorArea float64) []models.ComparableSale
}

// Approach is one valuation strategy. Estimate never panics or returns a
// Go error: expected business failures (missing inputs, unresolvable
// address, thin comparable inventory) are reported inside the result.
type Approach interface {
	Name() string
	Estimate(property models.PropertyDescriptor) models.ApproachResult
}

// roundToTenThousand rounds a price to the nearest 10,000 currency units.
func roundToTenThousand(v float64) float64 {
	return math.Round(v/10000) * 10000
}

func failure(reason string) models.ApproachResult {
	return models.ApproachResult{Error: reason}
}
