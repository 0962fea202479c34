package geocoding

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"estatewise/server/internal/models"
)

var (
	// ErrAddressNotFound means the address could not be resolved.
	ErrAddressNotFound = errors.New("address not found")
	// ErrServiceUnavailable means the geocoding service could not be
	// reached (network failure or timeout).
	ErrServiceUnavailable = errors.New("geocoding service unavailable")
)

// Geocoder resolves free-form addresses to coordinates. Valuation code
// depends on this interface so test doubles can be injected.
type Geocoder interface {
	Geocode(address string) (models.Coordinates, error)
}

// NominatimGeocoder resolves addresses through the public Nominatim API,
// with an in-memory cache persisted to disk between runs.
type NominatimGeocoder struct {
	logger    *logrus.Logger
	cacheDir  string
	cache     map[string]models.Coordinates
	cacheLock sync.RWMutex
	client    *http.Client
	baseURL   string
}

var _ Geocoder = (*NominatimGeocoder)(nil)

// NewNominatimGeocoder creates a geocoder with a bounded request timeout.
// An empty cacheDir keeps the cache in memory only.
func NewNominatimGeocoder(logger *logrus.Logger, cacheDir string, timeout time.Duration) *NominatimGeocoder {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cacheDir != "" {
		os.MkdirAll(cacheDir, 0755)
	}

	g := &NominatimGeocoder{
		logger:   logger,
		cacheDir: cacheDir,
		cache:    make(map[string]models.Coordinates),
		client:   &http.Client{Timeout: timeout},
		baseURL:  "https://nominatim.openstreetmap.org/search",
	}
	g.loadCache()
	return g
}

func (g *NominatimGeocoder) cacheFile() string {
	return filepath.Join(g.cacheDir, "geocode_cache.json")
}

func (g *NominatimGeocoder) loadCache() {
	if g.cacheDir == "" {
		return
	}
	data, err := os.ReadFile(g.cacheFile())
	if err != nil {
		g.logger.Warnf("Could not load geocode cache: %v", err)
		return
	}
	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.Errorf("Failed to parse geocode cache: %v", err)
		return
	}
	g.logger.Infof("Loaded %d cached addresses", len(g.cache))
}

func (g *NominatimGeocoder) saveCache() {
	if g.cacheDir == "" {
		return
	}
	g.cacheLock.RLock()
	defer g.cacheLock.RUnlock()

	data, err := json.Marshal(g.cache)
	if err != nil {
		g.logger.Errorf("Failed to marshal geocode cache: %v", err)
		return
	}
	if err := os.WriteFile(g.cacheFile(), data, 0644); err != nil {
		g.logger.Errorf("Failed to save geocode cache: %v", err)
	}
}

type nominatimResponse []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address to coordinates. A transport failure or
// timeout maps to ErrServiceUnavailable, an empty result to
// ErrAddressNotFound.
func (g *NominatimGeocoder) Geocode(address string) (models.Coordinates, error) {
	g.cacheLock.RLock()
	if coords, ok := g.cache[address]; ok {
		g.cacheLock.RUnlock()
		g.logger.WithFields(logrus.Fields{
			"address":   address,
			"latitude":  coords.Latitude,
			"longitude": coords.Longitude,
			"source":    "cache",
		}).Debug("Found coordinates in cache")
		return coords, nil
	}
	g.cacheLock.RUnlock()

	g.logger.WithField("address", address).Info("Geocoding address with Nominatim")

	// Respect Nominatim's usage policy
	time.Sleep(time.Second)

	params := url.Values{
		"q":            []string{address},
		"format":       []string{"json"},
		"limit":        []string{"1"},
		"countrycodes": []string{"jp"},
	}

	req, err := http.NewRequest("GET", g.baseURL, nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", "EstateWise Investment Analyzer/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("address", address).Error("Geocoding request failed")
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.WithField("status", resp.StatusCode).Error("Geocoding request rejected")
		return models.Coordinates{}, fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	var result nominatimResponse
	if err := json.Unmarshal(body, &result); err != nil {
		g.logger.WithError(err).WithField("address", address).Error("Failed to parse response")
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if len(result) == 0 {
		g.logger.WithField("address", address).Warn("No results found")
		return models.Coordinates{}, fmt.Errorf("%w: %s", ErrAddressNotFound, address)
	}

	var coords models.Coordinates
	fmt.Sscanf(result[0].Lat, "%f", &coords.Latitude)
	fmt.Sscanf(result[0].Lon, "%f", &coords.Longitude)

	g.logger.WithFields(logrus.Fields{
		"address":   address,
		"latitude":  coords.Latitude,
		"longitude": coords.Longitude,
		"source":    "nominatim",
	}).Info("Successfully geocoded address")

	g.cacheLock.Lock()
	g.cache[address] = coords
	g.cacheLock.Unlock()

	go g.saveCache()

	return coords, nil
}
