package valuation

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"estatewise/server/internal/geocoding"
	"estatewise/server/internal/models"
)

// Fixed method weights for the final combination. Methods that failed
// contribute nothing; the divisor is the sum of the weights that did.
var methodWeights = map[string]float64{
	models.MethodComparable:  0.4,
	models.MethodYieldBased:  0.4,
	models.MethodMarketBased: 0.2,
}

// Estimator runs the requested valuation approaches and aggregates their
// results into a weighted final estimate, a confidence score and ranked
// recommendations. One approach failing never aborts the aggregation.
type Estimator struct {
	approaches map[string]Approach
	logger     *logrus.Logger
}

// NewEstimator wires the three standard approaches.
func NewEstimator(source MarketData, geocoder geocoding.Geocoder, logger *logrus.Logger) *Estimator {
	return NewEstimatorWith(logger,
		NewComparableApproach(source, geocoder),
		NewYieldApproach(source),
		NewMarketApproach(source),
	)
}

// NewEstimatorWith builds an estimator over explicit approaches, so tests
// can substitute doubles.
func NewEstimatorWith(logger *logrus.Logger, approaches ...Approach) *Estimator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	byName := make(map[string]Approach, len(approaches))
	for _, a := range approaches {
		byName[a.Name()] = a
	}
	return &Estimator{approaches: byName, logger: logger}
}

// Estimate runs the requested methods ("all", nil or empty expands to the
// full set) concurrently and combines their results.
func (e *Estimator) Estimate(property models.PropertyDescriptor, methods []string) models.EstimationResult {
	requested := e.normalizeMethods(methods)

	estimates := make(map[string]models.ApproachResult, len(requested))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, name := range requested {
		approach, ok := e.approaches[name]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(name string, approach Approach) {
			defer wg.Done()
			result := approach.Estimate(property)
			mu.Lock()
			estimates[name] = result
			mu.Unlock()
		}(name, approach)
	}
	wg.Wait()

	final := e.weightedAverage(estimates)
	score := e.confidenceScore(estimates)
	recommendations := e.recommendations(final, score, estimates, property)

	result := models.EstimationResult{
		PropertyID:        property.ID,
		EstimationDate:    time.Now(),
		EstimationMethods: requested,
		Estimates:         estimates,
		FinalEstimate:     final,
		ConfidenceScore:   score,
		Recommendations:   recommendations,
		Confidence:        scoreLabel(score),
	}
	if len(recommendations) > 0 {
		result.Recommendation = recommendations[0]
	}

	e.logger.WithFields(logrus.Fields{
		"property_id":      property.ID,
		"methods":          requested,
		"methods_used":     final.MethodsUsed,
		"confidence_score": score,
	}).Info("Estimation completed")

	return result
}

func (e *Estimator) normalizeMethods(methods []string) []string {
	if len(methods) == 0 {
		return append([]string(nil), models.AllMethods...)
	}
	for _, m := range methods {
		if m == models.MethodAll {
			return append([]string(nil), models.AllMethods...)
		}
	}
	seen := make(map[string]bool, len(methods))
	normalized := make([]string, 0, len(methods))
	for _, m := range methods {
		if _, known := e.approaches[m]; known && !seen[m] {
			seen[m] = true
			normalized = append(normalized, m)
		}
	}
	return normalized
}

func (e *Estimator) weightedAverage(estimates map[string]models.ApproachResult) models.FinalEstimate {
	var weightedSum, weightTotal float64
	used := make([]string, 0, len(estimates))
	for _, method := range models.AllMethods {
		result, ok := estimates[method]
		if !ok || !result.Succeeded() {
			continue
		}
		weight := methodWeights[method]
		weightedSum += *result.EstimatedPrice * weight
		weightTotal += weight
		used = append(used, method)
	}

	if weightTotal == 0 {
		return models.FinalEstimate{Price: nil, MethodsUsed: []string{}, Confidence: "low"}
	}

	price := roundToTenThousand(weightedSum / weightTotal)
	confidence := "medium"
	if len(used) >= 2 {
		confidence = "high"
	}
	return models.FinalEstimate{Price: &price, MethodsUsed: used, Confidence: confidence}
}

// confidenceScore combines three signals into [0, 1]: how many methods
// succeeded, how many comparables backed the comparable method, and how
// tightly the successful prices agree.
func (e *Estimator) confidenceScore(estimates map[string]models.ApproachResult) float64 {
	var prices []float64
	for _, result := range estimates {
		if result.Succeeded() {
			prices = append(prices, *result.EstimatedPrice)
		}
	}

	score := math.Min(float64(len(prices))*0.3, 0.6)
	score += math.Min(float64(estimates[models.MethodComparable].ComparableCount)*0.1, 0.2)

	if len(prices) >= 2 {
		var sum float64
		for _, p := range prices {
			sum += p
		}
		mean := sum / float64(len(prices))
		if mean != 0 {
			var variance float64
			for _, p := range prices {
				variance += (p - mean) * (p - mean)
			}
			variance /= float64(len(prices))
			cv := math.Sqrt(variance) / mean
			score += math.Max(0, 0.2-cv*0.5)
		}
	}

	return math.Min(score, 1.0)
}

func scoreLabel(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

func (e *Estimator) recommendations(final models.FinalEstimate, score float64, estimates map[string]models.ApproachResult, property models.PropertyDescriptor) []string {
	if final.Price == nil {
		return []string{"Not enough data to produce an estimate. Collect more detailed property information."}
	}

	var recs []string
	if property.PurchasePrice > 0 {
		diff := (*final.Price - property.PurchasePrice) / property.PurchasePrice
		switch {
		case diff > 0.1:
			recs = append(recs, fmt.Sprintf("Estimated value is up about %.1f%% from the purchase price.", diff*100))
		case diff < -0.1:
			recs = append(recs, fmt.Sprintf("Estimated value is down about %.1f%% from the purchase price.", math.Abs(diff)*100))
		default:
			recs = append(recs, "Price movement since purchase is minimal.")
		}
	}

	switch {
	case score >= 0.7:
		recs = append(recs, "Estimate confidence is high and can serve as a reference for a sale decision.")
	case score >= 0.4:
		recs = append(recs, "Estimate confidence is moderate; consider an additional appraisal.")
	default:
		recs = append(recs, "Estimate confidence is low; a professional appraisal is recommended.")
	}

	if yield, ok := estimates[models.MethodYieldBased]; ok && yield.AreaYieldRate != nil {
		switch rate := *yield.AreaYieldRate; {
		case rate > 6:
			recs = append(recs, "High-yield area; investor demand can be expected.")
		case rate < 4:
			recs = append(recs, "Low-yield area; consider selling to owner-occupiers.")
		}
	}

	return recs
}
