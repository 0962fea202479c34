package valuation

import (
	"estatewise/server/internal/models"
)

// YieldApproach capitalizes the subject's rental income against the
// area's expected yield rate, under three scenarios.
type YieldApproach struct {
	source MarketData
}

var _ Approach = (*YieldApproach)(nil)

func NewYieldApproach(source MarketData) *YieldApproach {
	return &YieldApproach{source: source}
}

func (a *YieldApproach) Name() string { return models.MethodYieldBased }

func (a *YieldApproach) Estimate(property models.PropertyDescriptor) models.ApproachResult {
	if property.MonthlyRent <= 0 {
		return failure("monthly rent missing")
	}

	areaYield := a.source.AreaYieldRate(property.Address)
	annualRent := property.MonthlyRent * 12

	scenarios := &models.YieldScenarios{
		Conservative: capitalize(annualRent, areaYield+0.5),
		Moderate:     capitalize(annualRent, areaYield),
		Optimistic:   capitalize(annualRent, areaYield-0.5),
	}

	return models.ApproachResult{
		EstimatedPrice: scenarios.Moderate,
		AreaYieldRate:  &areaYield,
		YieldScenarios: scenarios,
		AnnualRent:     annualRent,
	}
}

// capitalize converts annual rent into a price at the given yield
// percentage. A non-positive yield has no finite price.
func capitalize(annualRent, yieldRate float64) *float64 {
	if yieldRate <= 0 {
		return nil
	}
	price := roundToTenThousand(annualRent / (yieldRate / 100))
	return &price
}
