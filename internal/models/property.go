package models

import "time"

// PropertyType enumerates the building categories the valuation engine knows.
type PropertyType string

const (
	TypeApartment     PropertyType = "apartment"
	TypeHouse         PropertyType = "house"
	TypeSmallBuilding PropertyType = "small_building"
)

// Valid reports whether the type is one of the known categories.
func (t PropertyType) Valid() bool {
	switch t {
	case TypeApartment, TypeHouse, TypeSmallBuilding:
		return true
	}
	return false
}

const (
	// DefaultBuildingAge is assumed when the construction year is unknown.
	DefaultBuildingAge = 15
	// DefaultFloorArea (sqm) is assumed when the floor area is unknown.
	DefaultFloorArea = 50.0
)

// PropertyDescriptor carries the inputs to one estimation call. It is
// immutable for the duration of the call; optional fields use pointers and
// the accessors below apply the documented defaults.
type PropertyDescriptor struct {
	ID               string       `json:"id"`
	Address          string       `json:"address"`
	Type             PropertyType `json:"type"`
	ConstructionYear *int         `json:"construction_year,omitempty"`
	FloorArea        float64      `json:"floor_area"`
	MonthlyRent      float64      `json:"monthly_rent"`
	PurchasePrice    float64      `json:"purchase_price"`
}

// BuildingAge returns the subject's age in years at the given time,
// or DefaultBuildingAge when the construction year is unknown.
func (p PropertyDescriptor) BuildingAge(now time.Time) int {
	if p.ConstructionYear == nil {
		return DefaultBuildingAge
	}
	age := now.Year() - *p.ConstructionYear
	if age < 0 {
		return 0
	}
	return age
}

// EffectiveFloorArea returns the floor area with the default applied.
func (p PropertyDescriptor) EffectiveFloorArea() float64 {
	if p.FloorArea <= 0 {
		return DefaultFloorArea
	}
	return p.FloorArea
}

// EffectiveType returns the property type, defaulting to apartment.
func (p PropertyDescriptor) EffectiveType() PropertyType {
	if !p.Type.Valid() {
		return TypeApartment
	}
	return p.Type
}

// Property is a registered property record.
type Property struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	Type             string    `json:"type"`
	ConstructionYear *int      `json:"construction_year"`
	RoomLayout       string    `json:"room_layout"`
	FloorArea        float64   `json:"floor_area"`
	PurchasePrice    float64   `json:"purchase_price"`
	DownPayment      float64   `json:"down_payment"`
	LoanAmount       float64   `json:"loan_amount"`
	InterestRate     float64   `json:"interest_rate"`
	LoanPeriod       int       `json:"loan_period"`
	MonthlyRent      float64   `json:"monthly_rent"`
	ManagementFee    float64   `json:"management_fee"`
	RepairReserve    float64   `json:"repair_reserve"`
	PropertyTax      float64   `json:"property_tax"`
	Insurance        float64   `json:"insurance"`
	OccupancyMonths  int       `json:"occupancy_months_per_year"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Notes            string    `json:"notes,omitempty"`
}

// AnnualRent is the yearly rental income given the occupancy assumption.
func (p Property) AnnualRent() float64 {
	months := p.OccupancyMonths
	if months <= 0 || months > 12 {
		months = 12
	}
	return p.MonthlyRent * float64(months)
}

// AnnualExpenses sums the recurring yearly costs.
func (p Property) AnnualExpenses() float64 {
	monthly := p.ManagementFee + p.RepairReserve
	return monthly*12 + p.PropertyTax + p.Insurance
}

// Descriptor converts a registered property into estimation inputs.
func (p Property) Descriptor() PropertyDescriptor {
	return PropertyDescriptor{
		ID:               p.ID,
		Address:          p.Address,
		Type:             PropertyType(p.Type),
		ConstructionYear: p.ConstructionYear,
		FloorArea:        p.FloorArea,
		MonthlyRent:      p.MonthlyRent,
		PurchasePrice:    p.PurchasePrice,
	}
}
