package api

import (
	"errors"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estatewise/server/internal/analysis"
	"estatewise/server/internal/geocoding"
	"estatewise/server/internal/marketdata"
	"estatewise/server/internal/models"
	"estatewise/server/internal/registry"
	"estatewise/server/internal/valuation"
)

type Handler struct {
	registry  *registry.Registry
	estimator *valuation.Estimator
	source    *marketdata.Source
	geocoder  geocoding.Geocoder
	logger    *logrus.Logger
}

func NewHandler(reg *registry.Registry, estimator *valuation.Estimator, source *marketdata.Source, geocoder geocoding.Geocoder, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		registry:  reg,
		estimator: estimator,
		source:    source,
		geocoder:  geocoder,
		logger:    logger,
	}
}

// EstimateRequest accepts either an inline property description or the ID
// of a registered property, plus the estimation methods to run.
type EstimateRequest struct {
	PropertyID       string              `json:"property_id"`
	Address          string              `json:"address"`
	Type             models.PropertyType `json:"type"`
	ConstructionYear *int                `json:"construction_year"`
	FloorArea        float64             `json:"floor_area"`
	MonthlyRent      float64             `json:"monthly_rent"`
	PurchasePrice    float64             `json:"purchase_price"`
	Methods          []string            `json:"methods"`
}

func (h *Handler) EstimatePrice(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	descriptor := models.PropertyDescriptor{
		ID:               req.PropertyID,
		Address:          req.Address,
		Type:             req.Type,
		ConstructionYear: req.ConstructionYear,
		FloorArea:        req.FloorArea,
		MonthlyRent:      req.MonthlyRent,
		PurchasePrice:    req.PurchasePrice,
	}

	// A registered property fills in everything the request left blank.
	if req.PropertyID != "" {
		property, err := h.registry.GetProperty(req.PropertyID)
		if err == nil {
			stored := property.Descriptor()
			if descriptor.Address == "" {
				descriptor.Address = stored.Address
			}
			if descriptor.Type == "" {
				descriptor.Type = stored.Type
			}
			if descriptor.ConstructionYear == nil {
				descriptor.ConstructionYear = stored.ConstructionYear
			}
			if descriptor.FloorArea == 0 {
				descriptor.FloorArea = stored.FloorArea
			}
			if descriptor.MonthlyRent == 0 {
				descriptor.MonthlyRent = stored.MonthlyRent
			}
			if descriptor.PurchasePrice == 0 {
				descriptor.PurchasePrice = stored.PurchasePrice
			}
		} else if !errors.Is(err, registry.ErrPropertyNotFound) {
			h.logger.WithError(err).Error("Failed to load property")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load property"})
			return
		}
	}

	if descriptor.Type != "" && !descriptor.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown property type"})
		return
	}

	result := h.estimator.Estimate(descriptor, req.Methods)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetLandPrice(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	c.JSON(http.StatusOK, h.source.LandPrice(address))
}

func (h *Handler) GetAreaYield(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":    address,
		"yield_rate": h.source.AreaYieldRate(address),
	})
}

func (h *Handler) GetComparables(c *gin.Context) {
	propertyType := models.PropertyType(c.DefaultQuery("type", string(models.TypeApartment)))
	if !propertyType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown property type"})
		return
	}

	buildingAge, err := strconv.Atoi(c.DefaultQuery("building_age", strconv.Itoa(models.DefaultBuildingAge)))
	if err != nil || buildingAge < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid building_age"})
		return
	}
	floorArea, err := strconv.ParseFloat(c.DefaultQuery("floor_area", "50"), 64)
	if err != nil || floorArea <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid floor_area"})
		return
	}

	// The location comes either as explicit coordinates or as an address
	// to geocode.
	var coords models.Coordinates
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	address := c.Query("address")
	switch {
	case latStr != "" && lonStr != "":
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		coords = models.Coordinates{Latitude: lat, Longitude: lon}
	case address != "":
		var err error
		coords, err = h.geocoder.Geocode(address)
		if err != nil {
			if errors.Is(err, geocoding.ErrAddressNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
				return
			}
			h.logger.WithError(err).Error("Failed to geocode address")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Geocoding failed"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "address or lat/lon is required"})
		return
	}

	comparables := h.source.ComparableSales(coords.Latitude, coords.Longitude, propertyType, buildingAge, floorArea)
	c.JSON(http.StatusOK, gin.H{
		"coordinates": coords,
		"comparables": comparables,
	})
}

func (h *Handler) GetMarketTrends(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	propertyType := models.PropertyType(c.DefaultQuery("type", string(models.TypeApartment)))
	if !propertyType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown property type"})
		return
	}
	c.JSON(http.StatusOK, h.source.MarketTrends(address, propertyType))
}

// AnalyzeRequest mirrors analysis.Input but tolerates the loose external
// conventions: property_price as an alias for purchase_price, and rates
// given either as fractions or percent.
type AnalyzeRequest struct {
	PurchasePrice     float64  `json:"purchase_price"`
	PropertyPrice     float64  `json:"property_price"`
	MonthlyRent       float64  `json:"monthly_rent"`
	Type              string   `json:"type"`
	AnnualExpenses    *float64 `json:"annual_expenses"`
	AnnualExpenseRate *float64 `json:"annual_expense_rate"`
	LoanAmount        *float64 `json:"loan_amount"`
	LoanRatio         *float64 `json:"loan_ratio"`
	DownPayment       *float64 `json:"down_payment"`
	InterestRate      *float64 `json:"interest_rate"`
	LoanPeriod        *int     `json:"loan_period"`
	OccupancyMonths   *int     `json:"occupancy_months_per_year"`
	TaxBracket        *float64 `json:"investor_tax_bracket"`
}

func (r AnalyzeRequest) toInput() analysis.Input {
	in := analysis.Input{
		PurchasePrice:     r.PurchasePrice,
		MonthlyRent:       r.MonthlyRent,
		PropertyType:      r.Type,
		AnnualExpenses:    r.AnnualExpenses,
		AnnualExpenseRate: r.AnnualExpenseRate,
		LoanAmount:        r.LoanAmount,
		DownPayment:       r.DownPayment,
		InterestRate:      r.InterestRate,
		LoanPeriod:        r.LoanPeriod,
		OccupancyMonths:   r.OccupancyMonths,
		TaxBracket:        r.TaxBracket,
	}
	if in.PurchasePrice == 0 {
		in.PurchasePrice = r.PropertyPrice
	}
	if in.LoanAmount == nil && r.LoanRatio != nil {
		ratio := *r.LoanRatio
		if ratio > 1 {
			ratio /= 100
		}
		amount := in.PurchasePrice * ratio
		in.LoanAmount = &amount
	}
	if in.InterestRate != nil && *in.InterestRate > 1 {
		rate := *in.InterestRate / 100
		in.InterestRate = &rate
	}
	return in
}

func (h *Handler) AnalyzeProperty(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	in := req.toInput()
	if fieldErrors := analysis.Validate(in); len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analysis inputs", "fields": fieldErrors})
		return
	}

	c.JSON(http.StatusOK, analysis.Analyze(in))
}

func (h *Handler) RegisterProperty(c *gin.Context) {
	var property models.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if property.PurchasePrice <= 0 || property.MonthlyRent <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "purchase_price and monthly_rent must be greater than 0"})
		return
	}

	now := time.Now()
	property.CreatedAt = now
	property.UpdatedAt = now
	if err := h.registry.SaveProperty(&property); err != nil {
		h.logger.WithError(err).Error("Failed to save property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save property"})
		return
	}

	c.JSON(http.StatusCreated, property)
}

func (h *Handler) ListProperties(c *gin.Context) {
	properties, err := h.registry.ListProperties()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}
	if properties == nil {
		properties = []models.Property{}
	}
	c.JSON(http.StatusOK, properties)
}

func (h *Handler) GetProperty(c *gin.Context) {
	property, err := h.registry.GetProperty(c.Param("id"))
	if errors.Is(err, registry.ErrPropertyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load property"})
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) RegisterInvestor(c *gin.Context) {
	var investor models.Investor
	if err := c.ShouldBindJSON(&investor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	now := time.Now()
	investor.CreatedAt = now
	investor.UpdatedAt = now
	if err := h.registry.SaveInvestor(&investor); err != nil {
		h.logger.WithError(err).Error("Failed to save investor")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save investor"})
		return
	}

	c.JSON(http.StatusCreated, investor)
}

func (h *Handler) GetInvestor(c *gin.Context) {
	investor, err := h.registry.GetInvestor(c.Param("id"))
	if errors.Is(err, registry.ErrInvestorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Investor not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load investor")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load investor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"investor":               investor,
		"investment_budget":      investor.InvestmentBudget(),
		"recommended_loan_ratio": investor.RecommendedLoanRatio(),
	})
}

type CompareRequest struct {
	PropertyIDs []string `json:"property_ids" binding:"required"`
}

// PropertyComparison is one entry of a comparison result, ranked by gross
// yield.
type PropertyComparison struct {
	Rank         int             `json:"rank"`
	PropertyID   string          `json:"property_id"`
	PropertyName string          `json:"property_name"`
	Analysis     analysis.Report `json:"analysis"`
}

func (h *Handler) CompareProperties(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(req.PropertyIDs) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least two property IDs are required"})
		return
	}

	comparisons := make([]PropertyComparison, 0, len(req.PropertyIDs))
	for _, id := range req.PropertyIDs {
		property, err := h.registry.GetProperty(id)
		if errors.Is(err, registry.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found: " + id})
			return
		}
		if err != nil {
			h.logger.WithError(err).Error("Failed to load property")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load property"})
			return
		}

		expenses := property.AnnualExpenses()
		comparisons = append(comparisons, PropertyComparison{
			PropertyID:   property.ID,
			PropertyName: property.Name,
			Analysis: analysis.Analyze(analysis.Input{
				PurchasePrice:  property.PurchasePrice,
				MonthlyRent:    property.MonthlyRent,
				PropertyType:   property.Type,
				AnnualExpenses: &expenses,
				LoanAmount:     &property.LoanAmount,
				InterestRate:   &property.InterestRate,
				LoanPeriod:     &property.LoanPeriod,
			}),
		})
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].Analysis.GrossYield > comparisons[j].Analysis.GrossYield
	})
	for i := range comparisons {
		comparisons[i].Rank = i + 1
	}

	c.JSON(http.StatusOK, gin.H{"comparisons": comparisons})
}

func (h *Handler) AnalyzePortfolio(c *gin.Context) {
	investor, err := h.registry.GetInvestor(c.Param("investor_id"))
	if errors.Is(err, registry.ErrInvestorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Investor not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load investor")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load investor"})
		return
	}

	properties, err := h.registry.ListProperties()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}

	// An explicit id list narrows the portfolio; unknown ids are skipped.
	if ids := c.QueryArray("property_id"); len(ids) > 0 {
		wanted := make(map[string]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
		filtered := properties[:0]
		for _, p := range properties {
			if wanted[p.ID] {
				filtered = append(filtered, p)
			}
		}
		properties = filtered
	}

	if len(properties) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"investor_id":           investor.ID,
			"property_count":        0,
			"total_investment":      0,
			"total_monthly_rent":    0,
			"total_annual_cashflow": 0,
		})
		return
	}

	var totalInvestment, totalMonthlyRent, totalAnnualCashflow float64
	for _, p := range properties {
		expenses := p.AnnualExpenses()
		report := analysis.Analyze(analysis.Input{
			PurchasePrice:  p.PurchasePrice,
			MonthlyRent:    p.MonthlyRent,
			PropertyType:   p.Type,
			AnnualExpenses: &expenses,
			TaxBracket:     &investor.TaxBracket,
		})
		totalInvestment += p.PurchasePrice
		totalMonthlyRent += p.MonthlyRent
		totalAnnualCashflow += report.AnnualCashflow
	}

	response := gin.H{
		"investor_id":           investor.ID,
		"investment_experience": investor.Experience,
		"property_count":        len(properties),
		"total_investment":      totalInvestment,
		"total_monthly_rent":    totalMonthlyRent,
		"total_annual_cashflow": totalAnnualCashflow,
	}
	if investor.TargetMonthlyIncome > 0 {
		response["target_achievement_percent"] = totalMonthlyRent / investor.TargetMonthlyIncome * 100
	}
	c.JSON(http.StatusOK, response)
}
