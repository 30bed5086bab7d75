package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Breaker configures the per-location circuit breakers of the provider.
type Breaker struct {
	Interval    time.Duration `envconfig:"BREAKER_INTERVAL" default:"1m"`
	Timeout     time.Duration `envconfig:"BREAKER_TIMEOUT" default:"2m"`
	MaxFailures uint32        `envconfig:"BREAKER_MAX_FAILURES" default:"5" validate:"gte=1"`
}

// Probe configures the scheduled provider health probe.
type Probe struct {
	// Locations is a ";"-separated list of "lat,lon" pairs; empty disables probing.
	Locations  string        `envconfig:"PROBE_LOCATIONS"`
	Interval   time.Duration `envconfig:"PROBE_INTERVAL" default:"15m" validate:"gte=1m"`
	MaxHistory int           `envconfig:"PROBE_MAX_HISTORY" default:"96" validate:"gte=0"` // roughly 24h at 15-minute intervals
	MaxAge     time.Duration `envconfig:"PROBE_MAX_AGE" default:"24h" validate:"gte=0"`
}

type AppConfig struct {
	Provider string `envconfig:"WEATHER_PROVIDER" default:"weatherapi" validate:"oneof=weatherapi nws"`

	WeatherAPIKey string `envconfig:"WEATHER_API_KEY" validate:"required_if=Provider weatherapi"`
	WeatherAPIURL string `envconfig:"WEATHER_API_URL" default:"https://api.weatherapi.com/v1" validate:"url"`

	NWSURL     string `envconfig:"NWS_API_URL" default:"https://api.weather.gov" validate:"url"`
	NWSContact string `envconfig:"NWS_CONTACT" validate:"required_if=Provider nws"`

	// HTTPTimeout bounds every outbound provider request.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`

	// MaxConcurrency caps simultaneous upstream fetches per batch (0 = unbounded).
	MaxConcurrency int `envconfig:"MAX_CONCURRENCY" default:"0" validate:"gte=0"`

	DefaultDays int `envconfig:"DEFAULT_FORECAST_DAYS" default:"14" validate:"gte=1,ltefield=MaxDays"`
	MaxDays     int `envconfig:"MAX_FORECAST_DAYS" default:"14" validate:"gte=1,lte=14"`

	Breaker Breaker
	Probe   Probe

	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	// LogFile enables a rotating file log next to console output.
	LogFile string `envconfig:"LOG_FILE"`
}

var validate = validator.New()

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env file is fine; the environment may be fully populated.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
