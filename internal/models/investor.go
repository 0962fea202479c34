package models

import "time"

// InvestmentExperience levels.
type InvestmentExperience string

const (
	ExperienceBeginner     InvestmentExperience = "beginner"
	ExperienceIntermediate InvestmentExperience = "intermediate"
	ExperienceExperienced  InvestmentExperience = "experienced"
)

// RiskTolerance levels.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// Investor is a registered investor profile.
type Investor struct {
	ID                  string               `json:"id" gorm:"primaryKey"`
	AnnualIncome        float64              `json:"annual_income"`
	TaxBracket          float64              `json:"tax_bracket"`
	Experience          InvestmentExperience `json:"investment_experience"`
	RiskTolerance       RiskTolerance        `json:"risk_tolerance"`
	AvailableCash       float64              `json:"available_cash"`
	CurrentDebt         float64              `json:"current_debt"`
	MonthlySavings      float64              `json:"monthly_savings"`
	TargetMonthlyIncome float64              `json:"target_monthly_income"`
	InvestmentPeriod    int                  `json:"investment_period"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// InvestmentBudget is a rough budget ceiling: a multiple of annual income
// scaled by risk tolerance.
func (i Investor) InvestmentBudget() float64 {
	multiple := 6.0
	switch i.RiskTolerance {
	case RiskConservative:
		multiple = 5.0
	case RiskAggressive:
		multiple = 7.0
	}
	return i.AnnualIncome * multiple
}

// RecommendedLoanRatio scales with experience.
func (i Investor) RecommendedLoanRatio() float64 {
	switch i.Experience {
	case ExperienceBeginner:
		return 0.70
	case ExperienceExperienced:
		return 0.85
	default:
		return 0.80
	}
}
