package marketdata

import (
	"fmt"

	"estatewise/server/config"
	"estatewise/server/internal/models"
)

// Upstream is the boundary to the external market data providers. The real
// government and portal APIs are not integrated; SimulatedUpstream stands
// in for them, and tests substitute failing implementations to exercise
// the fallback paths.
type Upstream interface {
	FetchLandPrice(address string) (models.LandPrice, error)
	FetchAreaYield(address string) (float64, error)
	FetchMarketTrends(address string, propertyType models.PropertyType) (models.MarketTrends, error)
}

const nationalAverageLandPrice = 400000

// SimulatedUpstream derives deterministic per-region market data from the
// area heuristics table.
type SimulatedUpstream struct{}

var _ Upstream = SimulatedUpstream{}

func (SimulatedUpstream) FetchLandPrice(address string) (models.LandPrice, error) {
	price := float64(nationalAverageLandPrice)
	source := "simulated survey (national average)"
	if r := config.MatchRegion(address); r != nil {
		price = r.LandPricePerSqm
		source = fmt.Sprintf("simulated survey (%s)", r.Name)
	}
	return models.LandPrice{
		PricePerSqm: price,
		Source:      source,
		SampleCount: 25,
		PriceRange: &models.PriceRange{
			Min:    price * 0.85,
			Max:    price * 1.15,
			Median: price,
		},
	}, nil
}

func (SimulatedUpstream) FetchAreaYield(address string) (float64, error) {
	if r := config.MatchRegion(address); r != nil {
		return r.YieldRate, nil
	}
	return 6.0, nil
}

func (SimulatedUpstream) FetchMarketTrends(address string, _ models.PropertyType) (models.MarketTrends, error) {
	region := config.MatchRegion(address)
	if region == nil {
		return models.MarketTrends{
			PriceTrend:  "flat",
			DemandLevel: "medium",
			SupplyLevel: "medium",
			Outlook:     "stable",
			Confidence:  "medium",
		}, nil
	}

	switch region.Tier {
	case config.TierMetroCore:
		return models.MarketTrends{
			PriceTrend:  "rising",
			DemandLevel: "high",
			SupplyLevel: "low",
			Outlook:     "favorable",
			Confidence:  "high",
		}, nil
	case config.TierMetroNearCore, config.TierMetroOuter:
		return models.MarketTrends{
			PriceTrend:  "slightly rising",
			DemandLevel: "medium",
			SupplyLevel: "medium",
			Outlook:     "somewhat favorable",
			Confidence:  "medium",
		}, nil
	default:
		return models.MarketTrends{
			PriceTrend:  "slightly rising",
			DemandLevel: "medium",
			SupplyLevel: "medium",
			Outlook:     "stable",
			Confidence:  "medium",
		}, nil
	}
}
