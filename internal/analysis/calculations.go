// Package analysis implements the investment arithmetic behind property
// analysis: yields, amortized loan payments, cashflow, payback period,
// depreciation and tax effects.
package analysis

import (
	"math"

	"estatewise/server/internal/models"
)

const (
	DefaultAnnualExpenseRate = 0.20
	DefaultLoanRatio         = 0.80
	DefaultInterestRate      = 0.025
	DefaultLoanPeriodYears   = 25
	DefaultOccupancyMonths   = 12

	// Share of the purchase price attributed to the building when the
	// land/building split is unknown.
	defaultBuildingRatio = 0.7
)

// Statutory depreciation periods in years per building type.
var depreciationYears = map[string]int{
	"rc":                             47,
	string(models.TypeHouse):         33,
	string(models.TypeApartment):     22,
	string(models.TypeSmallBuilding): 22,
}

// GrossYield returns the gross yield in percent. A non-positive purchase
// price yields 0 rather than a division error.
func GrossYield(annualRent, purchasePrice float64) float64 {
	if purchasePrice <= 0 {
		return 0
	}
	return annualRent / purchasePrice * 100
}

// NetYield returns the net yield in percent after annual expenses.
func NetYield(annualRent, annualExpenses, purchasePrice float64) float64 {
	if purchasePrice <= 0 {
		return 0
	}
	return (annualRent - annualExpenses) / purchasePrice * 100
}

// MonthlyLoanPayment returns the level monthly payment of an amortized
// loan. A zero interest rate splits the principal evenly; invalid inputs
// return 0.
func MonthlyLoanPayment(loanAmount, interestRate float64, loanPeriodYears int) float64 {
	if loanAmount <= 0 || interestRate < 0 || loanPeriodYears <= 0 {
		return 0
	}
	payments := float64(loanPeriodYears * 12)
	if interestRate == 0 {
		return loanAmount / payments
	}
	monthlyRate := interestRate / 12
	factor := math.Pow(1+monthlyRate, payments)
	return loanAmount * (monthlyRate * factor) / (factor - 1)
}

// MonthlyCashflow returns rent minus loan payment minus expenses.
func MonthlyCashflow(monthlyRent, monthlyLoanPayment, monthlyExpenses float64) float64 {
	return monthlyRent - monthlyLoanPayment - monthlyExpenses
}

// PaybackPeriod returns the years needed to recover the down payment from
// the annual cashflow, or +Inf when the cashflow is not positive.
func PaybackPeriod(downPayment, annualCashflow float64) float64 {
	if annualCashflow <= 0 {
		return math.Inf(1)
	}
	return downPayment / annualCashflow
}

// TaxBenefit returns the annual tax saving from deducting depreciation
// and expenses at the given income tax rate.
func TaxBenefit(annualDepreciation, annualExpenses, taxRate float64) float64 {
	return (annualDepreciation + annualExpenses) * taxRate
}

// BuildingDepreciation returns the straight-line annual depreciation of
// the building portion of the purchase price. Unknown property types use
// the 22-year period.
func BuildingDepreciation(purchasePrice float64, propertyType string, buildingRatio float64) float64 {
	years, ok := depreciationYears[propertyType]
	if !ok {
		years = 22
	}
	return purchasePrice * buildingRatio / float64(years)
}
