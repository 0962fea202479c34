package valuation

import (
	"math"
	"time"

	"estatewise/server/internal/models"
)

// Replacement cost per square meter of new construction, by type.
var baseBuildingCosts = map[models.PropertyType]float64{
	models.TypeApartment:     180000,
	models.TypeHouse:         200000,
	models.TypeSmallBuilding: 250000,
}

// MarketApproach values the subject as land plus the depreciated
// replacement value of the building.
type MarketApproach struct {
	source MarketData
	now    func() time.Time
}

var _ Approach = (*MarketApproach)(nil)

func NewMarketApproach(source MarketData) *MarketApproach {
	return &MarketApproach{source: source, now: time.Now}
}

func (a *MarketApproach) Name() string { return models.MethodMarketBased }

func (a *MarketApproach) Estimate(property models.PropertyDescriptor) models.ApproachResult {
	if property.Address == "" {
		return failure("address missing")
	}

	landPrice := a.source.LandPrice(property.Address)
	if landPrice.PricePerSqm <= 0 {
		return failure("land price unavailable")
	}

	floorArea := property.EffectiveFloorArea()
	buildingValue := estimateBuildingValue(property.BuildingAge(a.now()), floorArea, property.EffectiveType())

	landComponent := landPrice.PricePerSqm * floorArea
	estimate := roundToTenThousand(landComponent + buildingValue)

	return models.ApproachResult{
		EstimatedPrice:  &estimate,
		LandPricePerSqm: &landPrice.PricePerSqm,
		BuildingValue:   buildingValue,
		LandPriceSource: landPrice.Source,
	}
}

// estimateBuildingValue depreciates the replacement cost linearly at 2%
// per year of age, keeping at least 20% of the new value.
func estimateBuildingValue(buildingAge int, floorArea float64, propertyType models.PropertyType) float64 {
	baseCost, ok := baseBuildingCosts[propertyType]
	if !ok {
		baseCost = baseBuildingCosts[models.TypeApartment]
	}
	newValue := baseCost * floorArea
	remaining := math.Max(0.2, 1-float64(buildingAge)*0.02)
	return newValue * remaining
}
