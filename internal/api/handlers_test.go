package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatewise/server/internal/marketdata"
	"estatewise/server/internal/models"
	"estatewise/server/internal/registry"
	"estatewise/server/internal/valuation"
)

// stubGeocoder resolves every address to central Tokyo.
type stubGeocoder struct{}

func (stubGeocoder) Geocode(string) (models.Coordinates, error) {
	return models.Coordinates{Latitude: 35.6581, Longitude: 139.7514}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *registry.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	reg, err := registry.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)

	source := marketdata.NewSource(marketdata.NewCache(), nil, marketdata.DefaultOptions(), nil, logger)
	geocoder := stubGeocoder{}
	estimator := valuation.NewEstimator(source, geocoder, logger)

	router := gin.New()
	SetupRoutes(router, NewHandler(reg, estimator, source, geocoder, logger))
	return router, reg
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEstimateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/estimate", gin.H{
		"address":        "Tokyo, Shibuya 1-2-3",
		"type":           "apartment",
		"floor_area":     50,
		"monthly_rent":   120000,
		"purchase_price": 30000000,
		"methods":        []string{"all"},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result models.EstimationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Estimates, 3)
	require.NotNil(t, result.FinalEstimate.Price)
	assert.Greater(t, *result.FinalEstimate.Price, 0.0)
	assert.NotEmpty(t, result.Recommendations)
	assert.Greater(t, result.ConfidenceScore, 0.0)
}

func TestEstimateEndpointInvalidType(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/estimate", gin.H{
		"address": "Tokyo, Shibuya",
		"type":    "castle",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimateEndpointNoData(t *testing.T) {
	router, _ := newTestRouter(t)

	// No address and no rent: every method fails, but the response is
	// still a well-formed estimation with a nil price.
	w := doJSON(t, router, http.MethodPost, "/api/estimate", gin.H{})

	require.Equal(t, http.StatusOK, w.Code)
	var result models.EstimationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Nil(t, result.FinalEstimate.Price)
	assert.Equal(t, "low", result.FinalEstimate.Confidence)
}

func TestEstimateEndpointByPropertyID(t *testing.T) {
	router, reg := newTestRouter(t)

	property := &models.Property{
		Name:          "Registered flat",
		Address:       "Tokyo, Minato 2-3-4",
		Type:          "apartment",
		FloorArea:     55,
		PurchasePrice: 42000000,
		MonthlyRent:   150000,
	}
	require.NoError(t, reg.SaveProperty(property))

	w := doJSON(t, router, http.MethodPost, "/api/estimate", gin.H{
		"property_id": property.ID,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result models.EstimationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, property.ID, result.PropertyID)
	require.NotNil(t, result.FinalEstimate.Price)
}

func TestMarketEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("Land price", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/market/land-price?address=Tokyo,+Minato", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result models.LandPrice
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 1200000.0, result.PricePerSqm)
	})

	t.Run("Yield", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/market/yield?address=Tokyo,+Minato", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 3.8, result["yield_rate"])
	})

	t.Run("Comparables", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/market/comparables?address=Tokyo,+Shibuya&type=apartment&building_age=10&floor_area=50", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result struct {
			Comparables []models.ComparableSale `json:"comparables"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.GreaterOrEqual(t, len(result.Comparables), 3)
	})

	t.Run("Comparables by coordinates", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/market/comparables?lat=35.66&lon=139.73&type=house", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result struct {
			Comparables []models.ComparableSale `json:"comparables"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.GreaterOrEqual(t, len(result.Comparables), 3)
	})

	t.Run("Comparables without location", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/market/comparables", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Trends", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/market/trends?address=Tokyo,+Minato", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result models.MarketTrends
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "rising", result.PriceTrend)
	})

	t.Run("Missing address", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/market/land-price", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAnalyzeEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/analyze", gin.H{
		"purchase_price":  30000000,
		"monthly_rent":    120000,
		"annual_expenses": 156000,
		"loan_amount":     24000000,
		"interest_rate":   0.025,
		"loan_period":     25,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var report map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 4.8, report["gross_yield"])
	assert.InDelta(t, 107668, report["monthly_loan_payment"], 5)
}

func TestAnalyzeEndpointNormalization(t *testing.T) {
	router, _ := newTestRouter(t)

	// property_price alias and percent-style ratios are accepted.
	w := doJSON(t, router, http.MethodPost, "/api/analyze", gin.H{
		"property_price": 30000000,
		"monthly_rent":   120000,
		"loan_ratio":     80,
		"interest_rate":  2.5,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var report map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.InDelta(t, 107668, report["monthly_loan_payment"], 5)
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/analyze", gin.H{
		"purchase_price": 30000000,
		"monthly_rent":   120000,
		"loan_amount":    35000000,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "loan_amount")
}

func TestPropertyEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/properties", gin.H{
		"name":           "Meguro studio",
		"address":        "Tokyo, Meguro 5-6-7",
		"type":           "apartment",
		"purchase_price": 28000000,
		"monthly_rent":   110000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = doJSON(t, router, http.MethodGet, "/api/properties/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = doJSON(t, router, http.MethodGet, "/api/properties/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPropertyRegistrationValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/properties", gin.H{
		"name": "No price",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvestorEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/investors", gin.H{
		"annual_income":         8000000,
		"tax_bracket":           0.23,
		"investment_experience": "beginner",
		"risk_tolerance":        "moderate",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Investor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = doJSON(t, router, http.MethodGet, "/api/investors/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 8000000.0*6, body["investment_budget"])
	assert.Equal(t, 0.70, body["recommended_loan_ratio"])

	w = doJSON(t, router, http.MethodGet, "/api/investors/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompareEndpoint(t *testing.T) {
	router, reg := newTestRouter(t)

	highYield := &models.Property{Name: "High yield", PurchasePrice: 20000000, MonthlyRent: 150000}
	lowYield := &models.Property{Name: "Low yield", PurchasePrice: 40000000, MonthlyRent: 120000}
	require.NoError(t, reg.SaveProperty(highYield))
	require.NoError(t, reg.SaveProperty(lowYield))

	w := doJSON(t, router, http.MethodPost, "/api/compare", gin.H{
		"property_ids": []string{lowYield.ID, highYield.ID},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Comparisons []PropertyComparison `json:"comparisons"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Comparisons, 2)
	assert.Equal(t, "High yield", body.Comparisons[0].PropertyName)
	assert.Equal(t, 1, body.Comparisons[0].Rank)
	assert.Equal(t, 2, body.Comparisons[1].Rank)
}

func TestCompareEndpointErrors(t *testing.T) {
	router, reg := newTestRouter(t)

	property := &models.Property{Name: "Lonely", PurchasePrice: 20000000, MonthlyRent: 100000}
	require.NoError(t, reg.SaveProperty(property))

	w := doJSON(t, router, http.MethodPost, "/api/compare", gin.H{
		"property_ids": []string{property.ID},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "one property is not a comparison")

	w = doJSON(t, router, http.MethodPost, "/api/compare", gin.H{
		"property_ids": []string{property.ID, "missing"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioEndpoint(t *testing.T) {
	router, reg := newTestRouter(t)

	investor := &models.Investor{
		AnnualIncome:        8000000,
		TaxBracket:          0.23,
		TargetMonthlyIncome: 500000,
	}
	require.NoError(t, reg.SaveInvestor(investor))

	for i := 0; i < 2; i++ {
		property := &models.Property{
			Name:          fmt.Sprintf("Property %d", i+1),
			PurchasePrice: 20000000,
			MonthlyRent:   125000,
		}
		require.NoError(t, reg.SaveProperty(property))
	}

	w := doJSON(t, router, http.MethodGet, "/api/portfolio/"+investor.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2.0, body["property_count"])
	assert.Equal(t, 40000000.0, body["total_investment"])
	assert.Equal(t, 250000.0, body["total_monthly_rent"])
	assert.Equal(t, 50.0, body["target_achievement_percent"])
}

func TestPortfolioEndpointUnknownInvestor(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/portfolio/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
