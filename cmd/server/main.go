package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"estatewise/server/config"
	"estatewise/server/internal/api"
	"estatewise/server/internal/geocoding"
	"estatewise/server/internal/marketdata"
	"estatewise/server/internal/registry"
	"estatewise/server/internal/valuation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	reg, err := registry.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open registry database")
	}

	cacheDir := cfg.GeocoderCacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "estatewise", "geocode_cache")
	}
	geocoder := geocoding.NewNominatimGeocoder(logger, cacheDir, time.Duration(cfg.GeocoderTimeoutSeconds)*time.Second)

	source := marketdata.NewSource(marketdata.NewCache(), nil, marketdata.Options{
		LandPriceTTL:   time.Duration(cfg.MarketData.LandPriceTTLHours) * time.Hour,
		AreaYieldTTL:   time.Duration(cfg.MarketData.AreaYieldTTLHours) * time.Hour,
		ComparablesTTL: time.Duration(cfg.MarketData.ComparablesTTLHours) * time.Hour,
		TrendsTTL:      time.Duration(cfg.MarketData.TrendsTTLHours) * time.Hour,
		FallbackLand:   cfg.Fallback.LandPricePerSqm,
		FallbackYield:  cfg.Fallback.YieldRate,
	}, nil, logger)

	estimator := valuation.NewEstimator(source, geocoder, logger)
	handler := api.NewHandler(reg, estimator, source, geocoder, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
