package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-forecast/internal/config"
	"github.com/i474232898/weather-forecast/internal/logging"
	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/i474232898/weather-forecast/internal/weather/providers"
)

type deps struct {
	cfg     *config.AppConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
	service *weather.Service
}

// bootstrap loads configuration and builds the forecast service on reg.
// Console logs are written to console.
func bootstrap(reg prometheus.Registerer, console io.Writer) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile, serviceName, console)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics(reg)

	// Shared HTTP client for outbound provider calls.
	httpCfg := providers.HTTPClientConfig{
		Client: providers.NewHTTPClient(cfg.HTTPTimeout),
		Breaker: providers.BreakerConfig{
			Interval:    cfg.Breaker.Interval,
			Timeout:     cfg.Breaker.Timeout,
			MaxFailures: cfg.Breaker.MaxFailures,
		},
		Metrics: metrics,
		Logger:  logger,
	}

	provider, err := providers.New(providers.Settings{
		Name:          cfg.Provider,
		WeatherAPIURL: cfg.WeatherAPIURL,
		WeatherAPIKey: cfg.WeatherAPIKey,
		NWSURL:        cfg.NWSURL,
		NWSContact:    cfg.NWSContact,
	}, httpCfg)
	if err != nil {
		return nil, fmt.Errorf("build provider: %w", err)
	}

	service := weather.NewService(provider, weather.ServiceConfig{
		MaxConcurrency: cfg.MaxConcurrency,
		DefaultDays:    cfg.DefaultDays,
		MaxDays:        cfg.MaxDays,
	}, logger, metrics)

	return &deps{cfg: cfg, logger: logger, metrics: metrics, service: service}, nil
}
