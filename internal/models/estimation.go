package models

import "time"

// Estimation method names as requested by callers.
const (
	MethodComparable  = "comparable"
	MethodYieldBased  = "yield_based"
	MethodMarketBased = "market_based"
	MethodAll         = "all"
)

// AllMethods is the full method set, in weight order.
var AllMethods = []string{MethodComparable, MethodYieldBased, MethodMarketBased}

// Coordinates is a geocoded position.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// ComparableSale is one observed (or synthesized) transaction used as a
// price reference. Never mutated after creation.
type ComparableSale struct {
	ID           string       `json:"id"`
	Price        float64      `json:"price"`
	FloorArea    float64      `json:"floor_area"`
	BuildingAge  int          `json:"building_age"`
	Distance     float64      `json:"distance"`
	SaleDate     time.Time    `json:"sale_date"`
	PropertyType PropertyType `json:"property_type"`
	PricePerSqm  float64      `json:"price_per_sqm"`
}

// LandPrice is the land-price lookup result.
type LandPrice struct {
	PricePerSqm float64     `json:"price_per_sqm"`
	Source      string      `json:"source"`
	SampleCount int         `json:"count,omitempty"`
	PriceRange  *PriceRange `json:"price_range,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// MarketTrends is the categorical market judgment for an area.
type MarketTrends struct {
	PriceTrend  string `json:"price_trend"`
	DemandLevel string `json:"demand_level"`
	SupplyLevel string `json:"supply_level"`
	Outlook     string `json:"market_outlook"`
	Confidence  string `json:"confidence"`
	Error       string `json:"error,omitempty"`
}

// PriceRange summarizes a set of prices.
type PriceRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// YieldScenarios holds the per-scenario capitalized prices. A nil entry
// means the scenario's yield was non-positive.
type YieldScenarios struct {
	Conservative *float64 `json:"conservative"`
	Moderate     *float64 `json:"moderate"`
	Optimistic   *float64 `json:"optimistic"`
}

// ApproachResult is the outcome of one valuation approach. EstimatedPrice
// is nil when the approach failed, in which case Error explains why.
type ApproachResult struct {
	EstimatedPrice *float64 `json:"estimated_price"`
	Error          string   `json:"error,omitempty"`

	// comparable method
	ComparableCount int              `json:"comparable_count,omitempty"`
	PriceRange      *PriceRange      `json:"price_range,omitempty"`
	Comparables     []ComparableSale `json:"comparables,omitempty"`

	// yield_based method
	AreaYieldRate  *float64        `json:"area_yield_rate,omitempty"`
	YieldScenarios *YieldScenarios `json:"yield_scenarios,omitempty"`
	AnnualRent     float64         `json:"annual_rent,omitempty"`

	// market_based method
	LandPricePerSqm *float64 `json:"land_price_per_sqm,omitempty"`
	BuildingValue   float64  `json:"building_value,omitempty"`
	LandPriceSource string   `json:"land_price_source,omitempty"`
}

// Succeeded reports whether the approach produced a price.
func (r ApproachResult) Succeeded() bool {
	return r.EstimatedPrice != nil
}

// FinalEstimate is the weighted combination over the approaches that
// produced a price.
type FinalEstimate struct {
	Price       *float64 `json:"price"`
	MethodsUsed []string `json:"methods_used"`
	Confidence  string   `json:"confidence"`
}

// EstimationResult is the aggregate answer for one estimation request.
// Constructed fresh per call and never persisted by the engine.
type EstimationResult struct {
	PropertyID        string                    `json:"property_id"`
	EstimationDate    time.Time                 `json:"estimation_date"`
	EstimationMethods []string                  `json:"estimation_methods"`
	Estimates         map[string]ApproachResult `json:"estimates"`
	FinalEstimate     FinalEstimate             `json:"final_estimate"`
	ConfidenceScore   float64                   `json:"confidence_score"`
	Recommendations   []string                  `json:"recommendations"`

	// Flattened legacy fields for simple callers.
	Confidence     string `json:"confidence"`
	Recommendation string `json:"recommendation"`
}
