package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// HTTP server
	Port string `env:"PORT" envDefault:"5260"`

	// Registry storage. The default keeps registered properties and
	// investors in process memory only.
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file::memory:?cache=shared"`

	// Geocoding
	GeocoderTimeoutSeconds int    `env:"GEOCODER_TIMEOUT" envDefault:"10"`
	GeocoderCacheDir       string `env:"GEOCODER_CACHE_DIR"`

	// MarketData cache TTLs, in hours
	MarketData struct {
		LandPriceTTLHours   int `env:"LAND_PRICE_TTL_HOURS" envDefault:"720"`
		AreaYieldTTLHours   int `env:"AREA_YIELD_TTL_HOURS" envDefault:"168"`
		ComparablesTTLHours int `env:"COMPARABLES_TTL_HOURS" envDefault:"24"`
		TrendsTTLHours      int `env:"TRENDS_TTL_HOURS" envDefault:"24"`
	}

	// Fallback values when the upstream market data source is unavailable
	Fallback struct {
		LandPricePerSqm float64 `env:"FALLBACK_LAND_PRICE" envDefault:"400000"`
		YieldRate       float64 `env:"FALLBACK_YIELD_RATE" envDefault:"6.0"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
