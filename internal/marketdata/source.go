package marketdata

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/sirupsen/logrus"

	"estatewise/server/config"
	"estatewise/server/internal/models"
)

// Base price per square meter by property type for comparable synthesis.
var basePricePerSqm = map[models.PropertyType]float64{
	models.TypeApartment:     600000,
	models.TypeHouse:         500000,
	models.TypeSmallBuilding: 700000,
}

// Options tunes the source's cache TTLs and fallback values.
type Options struct {
	LandPriceTTL   time.Duration
	AreaYieldTTL   time.Duration
	ComparablesTTL time.Duration
	TrendsTTL      time.Duration
	FallbackLand   float64
	FallbackYield  float64
}

// DefaultOptions mirrors the configured defaults: 30d land price, 7d area
// yield, 1d comparables and trends.
func DefaultOptions() Options {
	return Options{
		LandPriceTTL:   720 * time.Hour,
		AreaYieldTTL:   168 * time.Hour,
		ComparablesTTL: 24 * time.Hour,
		TrendsTTL:      24 * time.Hour,
		FallbackLand:   400000,
		FallbackYield:  6.0,
	}
}

// Source provides land prices, area yield rates, comparable sales and
// market trends, caching successful lookups and degrading to deterministic
// fallbacks when the upstream is unavailable. Lookups never fail: every
// operation returns a usable value.
type Source struct {
	cache    *Cache
	upstream Upstream
	logger   *logrus.Logger
	opts     Options
	now      func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewSource builds a source around the given cache and upstream. A nil
// upstream uses the simulated provider; a nil rng seeds from the clock.
func NewSource(cache *Cache, upstream Upstream, opts Options, rng *rand.Rand, logger *logrus.Logger) *Source {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if upstream == nil {
		upstream = SimulatedUpstream{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.LandPriceTTL <= 0 {
		opts = DefaultOptions()
	}
	return &Source{
		cache:    cache,
		upstream: upstream,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		rand:     rng,
	}
}

// SetClock overrides the time source, for tests.
func (s *Source) SetClock(now func() time.Time) {
	s.now = now
}

// LandPrice returns the land price per square meter for an address. An
// upstream failure yields the configured fallback value annotated with the
// failure reason; only successful fetches are cached so a transient outage
// self-heals on the next call.
func (s *Source) LandPrice(address string) models.LandPrice {
	key := s.cache.Key("land_price", map[string]string{"address": address})
	if v, ok := s.cache.Get(key); ok {
		return v.(models.LandPrice)
	}

	result, err := s.upstream.FetchLandPrice(address)
	if err != nil {
		s.logger.WithError(err).WithField("address", address).Warn("Land price upstream unavailable, using default")
		return models.LandPrice{
			PricePerSqm: s.opts.FallbackLand,
			Source:      "default",
			Error:       err.Error(),
		}
	}

	s.cache.Set(key, result, s.opts.LandPriceTTL)
	return result
}

// AreaYieldRate returns the expected gross yield percentage for an area.
// When the upstream fails, the region defaults table is consulted by
// substring match, falling back to the national default; the fallback is
// deterministic and never cached.
func (s *Source) AreaYieldRate(address string) float64 {
	key := s.cache.Key("area_yield", map[string]string{"address": address})
	if v, ok := s.cache.Get(key); ok {
		return v.(float64)
	}

	rate, err := s.upstream.FetchAreaYield(address)
	if err != nil {
		s.logger.WithError(err).WithField("address", address).Warn("Area yield upstream unavailable, using region default")
		if region := config.MatchRegion(address); region != nil {
			return region.YieldRate
		}
		return s.opts.FallbackYield
	}

	s.cache.Set(key, rate, s.opts.AreaYieldTTL)
	return rate
}

// ComparableSales returns recent transactions near the given point,
// comparable to a subject of the given type, age and floor area. No real
// inventory exists behind this design, so the set is synthesized:
// parameter-sensitive but pseudo-random, 3 to 8 records ordered by
// distance. Results are cached since generation is the normal path.
func (s *Source) ComparableSales(lat, lon float64, propertyType models.PropertyType, buildingAge int, floorArea float64) []models.ComparableSale {
	key := s.cache.Key("comparable_sales", map[string]string{
		"lat":  strconv.FormatFloat(lat, 'f', 4, 64),
		"lon":  strconv.FormatFloat(lon, 'f', 4, 64),
		"type": string(propertyType),
		"age":  strconv.Itoa(buildingAge),
		"area": strconv.FormatFloat(floorArea, 'f', 1, 64),
	})
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.ComparableSale)
	}

	comparables := s.generateComparables(lat, lon, propertyType, buildingAge, floorArea)
	s.cache.Set(key, comparables, s.opts.ComparablesTTL)
	return comparables
}

func (s *Source) generateComparables(lat, lon float64, propertyType models.PropertyType, buildingAge int, floorArea float64) []models.ComparableSale {
	base, ok := basePricePerSqm[propertyType]
	if !ok {
		base = basePricePerSqm[models.TypeApartment]
	}
	// Age discount of 1.5% per year, floored at 30% of the new price.
	agedPricePerSqm := base * math.Max(0.3, 1-float64(buildingAge)*0.015)

	subject := orb.Point{lon, lat}
	now := s.now()

	s.randMu.Lock()
	defer s.randMu.Unlock()

	count := 3 + s.rand.Intn(6)
	comparables := make([]models.ComparableSale, 0, count)
	for i := 0; i < count; i++ {
		compArea := floorArea * (0.8 + s.rand.Float64()*0.5)
		compAge := buildingAge + s.rand.Intn(9) - 3
		if compAge < 0 {
			compAge = 0
		}

		bearing := s.rand.Float64() * 360
		offset := float64(100 + s.rand.Intn(701))
		location := geo.PointAtBearingAndDistance(subject, bearing, offset)
		distance := math.Round(geo.DistanceHaversine(subject, location))

		distanceFactor := math.Max(0.9, 1-distance/1000*0.05)
		pricePerSqm := agedPricePerSqm * distanceFactor * (0.9 + s.rand.Float64()*0.2)

		comparables = append(comparables, models.ComparableSale{
			ID:           fmt.Sprintf("comp_%03d", i+1),
			Price:        math.Round(pricePerSqm * compArea),
			FloorArea:    math.Round(compArea*10) / 10,
			BuildingAge:  compAge,
			Distance:     distance,
			SaleDate:     now.AddDate(0, 0, -(30 + s.rand.Intn(336))),
			PropertyType: propertyType,
			PricePerSqm:  math.Round(pricePerSqm),
		})
	}

	sort.Slice(comparables, func(i, j int) bool {
		return comparables[i].Distance < comparables[j].Distance
	})
	return comparables
}

// MarketTrends returns the categorical market judgment for an area. The
// judgment is deterministic per region; an upstream failure degrades to a
// neutral low-confidence tuple, which is not cached.
func (s *Source) MarketTrends(address string, propertyType models.PropertyType) models.MarketTrends {
	key := s.cache.Key("market_trends", map[string]string{
		"address": address,
		"type":    string(propertyType),
	})
	if v, ok := s.cache.Get(key); ok {
		return v.(models.MarketTrends)
	}

	trends, err := s.upstream.FetchMarketTrends(address, propertyType)
	if err != nil {
		s.logger.WithError(err).WithField("address", address).Warn("Market trends upstream unavailable, using neutral judgment")
		return models.MarketTrends{
			PriceTrend:  "flat",
			DemandLevel: "medium",
			SupplyLevel: "medium",
			Outlook:     "stable",
			Confidence:  "low",
			Error:       err.Error(),
		}
	}

	s.cache.Set(key, trends, s.opts.TrendsTTL)
	return trends
}
