package analysis

import (
	"fmt"
	"math"
)

// Input carries the figures for one analysis run. Optional fields use
// pointers so that an explicit zero can be told apart from "not given";
// the documented defaults fill the gaps.
type Input struct {
	PurchasePrice     float64  `json:"purchase_price"`
	MonthlyRent       float64  `json:"monthly_rent"`
	PropertyType      string   `json:"type,omitempty"`
	AnnualExpenses    *float64 `json:"annual_expenses,omitempty"`
	AnnualExpenseRate *float64 `json:"annual_expense_rate,omitempty"`
	LoanAmount        *float64 `json:"loan_amount,omitempty"`
	DownPayment       *float64 `json:"down_payment,omitempty"`
	InterestRate      *float64 `json:"interest_rate,omitempty"`
	LoanPeriod        *int     `json:"loan_period,omitempty"`
	OccupancyMonths   *int     `json:"occupancy_months_per_year,omitempty"`
	TaxBracket        *float64 `json:"tax_bracket,omitempty"`
}

// Report holds the computed indicators. Payback period is nil when the
// annual cashflow cannot recover the down payment.
type Report struct {
	GrossYield         float64  `json:"gross_yield"`
	NetYield           float64  `json:"net_yield"`
	MonthlyCashflow    float64  `json:"monthly_cashflow"`
	AnnualCashflow     float64  `json:"annual_cashflow"`
	PaybackPeriod      *float64 `json:"payback_period"`
	MonthlyLoanPayment float64  `json:"monthly_loan_payment"`
	AnnualDepreciation float64  `json:"annual_depreciation"`
	AnnualTaxBenefit   float64  `json:"annual_tax_benefit"`
	NetAnnualIncome    float64  `json:"net_annual_income"`
}

// Analyze computes the full indicator set for the given inputs.
func Analyze(in Input) Report {
	occupancy := DefaultOccupancyMonths
	if in.OccupancyMonths != nil {
		occupancy = *in.OccupancyMonths
	}
	annualRent := in.MonthlyRent * float64(occupancy)

	propertyType := in.PropertyType
	if propertyType == "" {
		propertyType = "apartment"
	}

	annualExpenses := annualRent * DefaultAnnualExpenseRate
	if in.AnnualExpenses != nil {
		annualExpenses = *in.AnnualExpenses
	} else if in.AnnualExpenseRate != nil {
		annualExpenses = annualRent * *in.AnnualExpenseRate
	}

	loanAmount := in.PurchasePrice * DefaultLoanRatio
	if in.LoanAmount != nil {
		loanAmount = *in.LoanAmount
	}
	interestRate := DefaultInterestRate
	if in.InterestRate != nil {
		interestRate = *in.InterestRate
	}
	loanPeriod := DefaultLoanPeriodYears
	if in.LoanPeriod != nil {
		loanPeriod = *in.LoanPeriod
	}
	monthlyLoanPayment := MonthlyLoanPayment(loanAmount, interestRate, loanPeriod)

	monthlyCashflow := MonthlyCashflow(in.MonthlyRent, monthlyLoanPayment, annualExpenses/12)
	annualCashflow := monthlyCashflow * 12

	annualDepreciation := BuildingDepreciation(in.PurchasePrice, propertyType, defaultBuildingRatio)
	var annualTaxBenefit float64
	if in.TaxBracket != nil {
		annualTaxBenefit = TaxBenefit(annualDepreciation, annualExpenses, *in.TaxBracket)
	}

	downPayment := in.PurchasePrice - loanAmount
	if in.DownPayment != nil {
		downPayment = *in.DownPayment
	}
	var paybackPeriod *float64
	if raw := PaybackPeriod(downPayment, annualCashflow); !math.IsInf(raw, 1) {
		rounded := math.Round(raw*10) / 10
		paybackPeriod = &rounded
	}

	return Report{
		GrossYield:         round2(GrossYield(annualRent, in.PurchasePrice)),
		NetYield:           round2(NetYield(annualRent, annualExpenses, in.PurchasePrice)),
		MonthlyCashflow:    math.Round(monthlyCashflow),
		AnnualCashflow:     math.Round(annualCashflow),
		PaybackPeriod:      paybackPeriod,
		MonthlyLoanPayment: math.Round(monthlyLoanPayment),
		AnnualDepreciation: math.Round(annualDepreciation),
		AnnualTaxBenefit:   math.Round(annualTaxBenefit),
		NetAnnualIncome:    math.Round(annualCashflow + annualTaxBenefit),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Validate checks the analysis inputs and returns one message per invalid
// field. An empty map means the inputs are usable.
func Validate(in Input) map[string]string {
	errors := map[string]string{}

	if in.PurchasePrice <= 0 {
		errors["purchase_price"] = "purchase_price must be greater than 0"
	}
	if in.MonthlyRent <= 0 {
		errors["monthly_rent"] = "monthly_rent must be greater than 0"
	}
	if in.LoanAmount != nil && in.PurchasePrice > 0 && *in.LoanAmount > in.PurchasePrice {
		errors["loan_amount"] = "Loan amount cannot exceed purchase price"
	}
	if in.InterestRate != nil && (*in.InterestRate < 0 || *in.InterestRate > 0.20) {
		errors["interest_rate"] = "Interest rate should be between 0% and 20%"
	}
	if in.LoanPeriod != nil && (*in.LoanPeriod <= 0 || *in.LoanPeriod > 35) {
		errors["loan_period"] = "Loan period should be between 1 and 35 years"
	}
	if in.OccupancyMonths != nil && (*in.OccupancyMonths < 0 || *in.OccupancyMonths > 12) {
		errors["occupancy_months_per_year"] = "Occupancy months should be between 0 and 12"
	}

	return errors
}

// ValidationError wraps the per-field messages from Validate so handlers
// can surface them as one error value.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid analysis inputs: %d field(s)", len(e.Fields))
}
