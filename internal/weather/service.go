package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-forecast/internal/observability"
)

// ServiceConfig tunes the aggregator.
type ServiceConfig struct {
	// MaxConcurrency caps simultaneous location fetches in a batch (0 = unbounded).
	MaxConcurrency int
	// DefaultDays is used when a caller passes days <= 0.
	DefaultDays int
	// MaxDays clamps the requested horizon.
	MaxDays int
}

// Service resolves, fetches and normalizes forecasts for one or many locations.
type Service struct {
	provider Provider
	cfg      ServiceConfig
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewService creates a new Service around the configured provider.
func NewService(provider Provider, cfg ServiceConfig, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = DefaultForecastDays
	}
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = DefaultForecastDays
	}
	if metrics == nil {
		metrics = observability.NewUnregistered()
	}
	return &Service{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With().Str("component", "forecast-service").Str("provider", provider.Name()).Logger(),
		metrics:  metrics,
	}
}

// ProviderName reports which upstream the service is wired to.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// ForecastOne returns the forecast envelope for a single "lat,lon" string.
// It never returns an error: every failure becomes a failed envelope.
func (s *Service) ForecastOne(ctx context.Context, location string, days int) LocationForecastEnvelope {
	start := time.Now()
	env, outcome := s.forecastOne(ctx, location, s.horizon(days))

	s.metrics.ForecastsTotal.WithLabelValues(s.provider.Name(), outcome).Inc()
	s.metrics.ForecastDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())

	if !env.Success {
		s.logger.Warn().
			Str("location", location).
			Str("outcome", outcome).
			Str("error", env.Error).
			Msg("forecast failed")
	}
	return env
}

func (s *Service) forecastOne(ctx context.Context, location string, days int) (LocationForecastEnvelope, string) {
	fallback := EnvelopeLocation{Name: location}

	coord, err := ParseCoordinate(location)
	if err != nil {
		return failedEnvelope(fallback, err), "invalid_location"
	}
	if s.provider.Client == nil || s.provider.Normalizer == nil {
		return failedEnvelope(fallback, errors.New("no weather provider configured")), "internal_error"
	}

	payload, err := s.provider.Client.FetchForecast(ctx, coord, days)
	if err != nil {
		// A two-step provider may have confirmed the coordinate before failing.
		var upErr *UpstreamError
		if errors.As(err, &upErr) && upErr.Resolved != nil {
			fallback.Lat = coord.Latitude
			fallback.Long = coord.Longitude
		}
		return failedEnvelope(fallback, err), "upstream_error"
	}

	records, err := s.provider.Normalizer.Normalize(payload)
	if err != nil {
		return failedEnvelope(fallback, err), "schema_error"
	}

	return successEnvelope(envelopeLocation(location, coord, s.provider.Normalizer.Locate(payload)), records), "success"
}

func envelopeLocation(input string, coord CoordinateQuery, resolved *ResolvedLocation) EnvelopeLocation {
	loc := EnvelopeLocation{Name: input, Lat: coord.Latitude, Long: coord.Longitude}
	if resolved == nil {
		return loc
	}
	if resolved.Name != "" {
		loc.Name = resolved.Name
	}
	if resolved.Lat != 0 || resolved.Lon != 0 {
		loc.Lat = resolved.Lat
		loc.Long = resolved.Lon
	}
	return loc
}

// ForecastMany runs ForecastOne for every entry concurrently. The result has
// the same length and order as locations; a failing entry never affects its
// siblings. Only a failure of the fan-out itself collapses the result to a
// single failed envelope.
func (s *Service) ForecastMany(ctx context.Context, locations []string, days int) (result []LocationForecastEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			name := ""
			if len(locations) > 0 {
				name = locations[0]
			}
			s.logger.Error().Interface("panic", r).Int("locations", len(locations)).Msg("batch forecast aborted")
			result = []LocationForecastEnvelope{
				failedEnvelope(EnvelopeLocation{Name: name}, fmt.Errorf("batch forecast failed: %v", r)),
			}
		}
	}()

	s.metrics.BatchSize.Observe(float64(len(locations)))
	s.logger.Debug().Int("locations", len(locations)).Int("days", days).Msg("batch forecast started")

	envelopes := make([]LocationForecastEnvelope, len(locations))

	var g errgroup.Group
	if s.cfg.MaxConcurrency > 0 {
		g.SetLimit(s.cfg.MaxConcurrency)
	}

	for i, loc := range locations {
		i, loc := i, loc
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error().Interface("panic", r).Str("location", loc).Msg("forecast task panicked")
					envelopes[i] = failedEnvelope(EnvelopeLocation{Name: loc}, fmt.Errorf("internal error: %v", r))
				}
			}()
			envelopes[i] = s.ForecastOne(ctx, loc, days)
			return nil
		})
	}

	// Tasks never return errors; failures live in their envelopes.
	_ = g.Wait()

	return envelopes
}

func (s *Service) horizon(days int) int {
	if days <= 0 {
		days = s.cfg.DefaultDays
	}
	if days > s.cfg.MaxDays {
		days = s.cfg.MaxDays
	}
	return days
}
