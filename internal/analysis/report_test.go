package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestAnalyzeBasic(t *testing.T) {
	in := Input{
		PurchasePrice:   30000000,
		MonthlyRent:     120000,
		OccupancyMonths: intPtr(12),
		AnnualExpenses:  floatPtr(156000),
		LoanAmount:      floatPtr(24000000),
		InterestRate:    floatPtr(0.025),
		LoanPeriod:      intPtr(25),
		DownPayment:     floatPtr(6000000),
		PropertyType:    "apartment",
		TaxBracket:      floatPtr(0.23),
	}

	report := Analyze(in)

	assert.Equal(t, 4.8, report.GrossYield)
	assert.InDelta(t, 4.28, report.NetYield, 0.01)
	assert.InDelta(t, 107668, report.MonthlyLoanPayment, 5)
	assert.InDelta(t, 30000000*0.7/22, report.AnnualDepreciation, 1)
	assert.Greater(t, report.AnnualTaxBenefit, 0.0)
}

func TestAnalyzeDefaults(t *testing.T) {
	report := Analyze(Input{PurchasePrice: 30000000, MonthlyRent: 120000})

	// Defaults: 20% expense rate, 80% loan ratio, 2.5% over 25 years.
	assert.Equal(t, 4.8, report.GrossYield)
	assert.InDelta(t, 3.84, report.NetYield, 0.01)
	assert.InDelta(t, 107668, report.MonthlyLoanPayment, 5)
	assert.Equal(t, 0.0, report.AnnualTaxBenefit)
}

func TestAnalyzePaybackPeriodNil(t *testing.T) {
	// Rent too low to cover the loan payment, so the down payment is
	// never recovered.
	report := Analyze(Input{
		PurchasePrice: 30000000,
		MonthlyRent:   50000,
	})

	assert.Negative(t, report.MonthlyCashflow)
	assert.Nil(t, report.PaybackPeriod)
}

func TestAnalyzePaybackPeriodPositive(t *testing.T) {
	report := Analyze(Input{
		PurchasePrice:  30000000,
		MonthlyRent:    150000,
		AnnualExpenses: floatPtr(100000),
		LoanAmount:     floatPtr(0),
		DownPayment:    floatPtr(6000000),
	})

	require.NotNil(t, report.PaybackPeriod)
	// Annual cashflow is 150000*12 - 100000 = 1,700,000.
	assert.InDelta(t, 3.5, *report.PaybackPeriod, 0.1)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       Input
		badFields   []string
		expectClean bool
	}{
		{
			name:        "Valid input",
			input:       Input{PurchasePrice: 30000000, MonthlyRent: 120000},
			expectClean: true,
		},
		{
			name:      "Missing price and rent",
			input:     Input{},
			badFields: []string{"purchase_price", "monthly_rent"},
		},
		{
			name: "Loan exceeds price",
			input: Input{
				PurchasePrice: 30000000,
				MonthlyRent:   120000,
				LoanAmount:    floatPtr(35000000),
			},
			badFields: []string{"loan_amount"},
		},
		{
			name: "Interest rate out of range",
			input: Input{
				PurchasePrice: 30000000,
				MonthlyRent:   120000,
				InterestRate:  floatPtr(0.25),
			},
			badFields: []string{"interest_rate"},
		},
		{
			name: "Loan period too long",
			input: Input{
				PurchasePrice: 30000000,
				MonthlyRent:   120000,
				LoanPeriod:    intPtr(40),
			},
			badFields: []string{"loan_period"},
		},
		{
			name: "Occupancy months out of range",
			input: Input{
				PurchasePrice:   30000000,
				MonthlyRent:     120000,
				OccupancyMonths: intPtr(13),
			},
			badFields: []string{"occupancy_months_per_year"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.input)
			if tt.expectClean {
				assert.Empty(t, errs)
				return
			}
			assert.Len(t, errs, len(tt.badFields))
			for _, field := range tt.badFields {
				assert.Contains(t, errs, field)
			}
		})
	}
}
