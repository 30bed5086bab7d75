package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
)

const (
	defaultInterval = 15 * time.Minute
	probeTimeout    = 30 * time.Second
	// A probe only checks that the provider answers; one day is enough.
	probeDays = 1
)

// Forecaster is the part of weather.Service the probe depends on.
type Forecaster interface {
	ProviderName() string
	ForecastMany(ctx context.Context, locations []string, days int) []weather.LocationForecastEnvelope
}

// Scheduler periodically probes the configured provider with a batch forecast
// for a fixed set of locations and records the outcome.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Forecaster
	store     *store.MemoryStore
	metrics   *observability.Metrics
	clock     clockwork.Clock
	logger    zerolog.Logger
	locations []string
	interval  time.Duration
}

// New creates a new Scheduler. Invalid entries in locations are dropped.
func New(locations string, interval time.Duration, service Forecaster, probes *store.MemoryStore,
	metrics *observability.Metrics, clock clockwork.Clock, logger zerolog.Logger,
) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = observability.NewUnregistered()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		store:     probes,
		metrics:   metrics,
		clock:     clock,
		logger:    logger.With().Str("component", "probe-scheduler").Logger(),
		locations: weather.ParseLocationString(locations),
		interval:  interval,
	}
}

// Locations returns the normalized probe locations.
func (s *Scheduler) Locations() []string {
	return s.locations
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info().Msg("no probe locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = int(defaultInterval.Minutes())
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info().
		Strs("locations", s.locations).
		Int("everyMinutes", minutes).
		Msg("probe scheduler started")
	return nil
}

// RunOnce probes every location once and stores the results.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if len(s.locations) == 0 {
		return
	}

	s.logger.Debug().Msg("running provider probe")
	start := s.clock.Now()
	envelopes := s.service.ForecastMany(ctx, s.locations, probeDays)
	elapsed := s.clock.Since(start)
	checkedAt := s.clock.Now().UTC()

	failures := 0
	for i, loc := range s.locations {
		// Results are keyed canonically so lookups do not depend on the configured text.
		key := weather.LocationKey(loc)
		result := store.ProbeResult{
			Location:  key,
			Provider:  s.service.ProviderName(),
			Duration:  elapsed,
			CheckedAt: checkedAt,
		}
		// A collapsed batch yields fewer envelopes than locations.
		if i < len(envelopes) {
			env := envelopes[i]
			result.Success = env.Success
			result.Error = env.Error
			result.Records = len(env.Data)
		} else {
			result.Error = "no result for location"
		}

		healthy := 0.0
		if result.Success {
			healthy = 1
		} else {
			failures++
		}
		s.metrics.ProbeHealthy.WithLabelValues(key).Set(healthy)
		if s.store != nil {
			s.store.Save(result)
		}
	}

	s.logger.Info().
		Int("locations", len(s.locations)).
		Int("failures", failures).
		Dur("elapsed", elapsed).
		Msg("provider probe completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
