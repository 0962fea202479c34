package valuation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"estatewise/server/internal/geocoding"
	"estatewise/server/internal/models"
)

// MinComparables is the smallest comparable set the approach will price
// against.
const MinComparables = 2

const maxReportedComparables = 5

// ComparableApproach prices the subject against recent nearby sales,
// adjusted for floor area, building age and distance.
type ComparableApproach struct {
	source   MarketData
	geocoder geocoding.Geocoder
	now      func() time.Time
}

var _ Approach = (*ComparableApproach)(nil)

func NewComparableApproach(source MarketData, geocoder geocoding.Geocoder) *ComparableApproach {
	return &ComparableApproach{source: source, geocoder: geocoder, now: time.Now}
}

func (a *ComparableApproach) Name() string { return models.MethodComparable }

func (a *ComparableApproach) Estimate(property models.PropertyDescriptor) models.ApproachResult {
	if property.Address == "" {
		return failure("address missing")
	}

	coords, err := a.geocoder.Geocode(property.Address)
	if err != nil {
		return failure(fmt.Sprintf("could not resolve address: %v", err))
	}

	comparables := a.source.ComparableSales(
		coords.Latitude, coords.Longitude,
		property.EffectiveType(), property.BuildingAge(a.now()), property.EffectiveFloorArea(),
	)

	if len(comparables) < MinComparables {
		result := failure("not enough comparable sales")
		result.ComparableCount = len(comparables)
		return result
	}

	adjusted := make([]float64, len(comparables))
	for i, comp := range comparables {
		adjusted[i] = a.adjustPrice(comp, property)
	}

	var sum float64
	for _, price := range adjusted {
		sum += price
	}
	estimate := roundToTenThousand(sum / float64(len(adjusted)))

	sorted := append([]float64(nil), adjusted...)
	sort.Float64s(sorted)

	reported := comparables
	if len(reported) > maxReportedComparables {
		reported = reported[:maxReportedComparables]
	}

	return models.ApproachResult{
		EstimatedPrice:  &estimate,
		ComparableCount: len(adjusted),
		PriceRange: &models.PriceRange{
			Min:    roundToTenThousand(sorted[0]),
			Max:    roundToTenThousand(sorted[len(sorted)-1]),
			Median: sorted[len(sorted)/2],
		},
		Comparables: reported,
	}
}

// adjustPrice normalizes a comparable's price onto the subject: scaled by
// relative floor area, by 1% per year of age difference, and by a distance
// decay floored at 0.95.
func (a *ComparableApproach) adjustPrice(comp models.ComparableSale, property models.PropertyDescriptor) float64 {
	targetArea := property.EffectiveFloorArea()
	compArea := comp.FloorArea
	if compArea <= 0 {
		compArea = targetArea
	}
	adjusted := comp.Price * targetArea / compArea

	ageDiff := float64(comp.BuildingAge - property.BuildingAge(a.now()))
	adjusted *= 1 - ageDiff*0.01

	adjusted *= math.Max(0.95, 1-comp.Distance/1000*0.05)
	return adjusted
}
