package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
)

type fakeForecaster struct {
	envelopes []weather.LocationForecastEnvelope
	gotDays   int
	gotLocs   []string
}

func (f *fakeForecaster) ProviderName() string { return "fake" }

func (f *fakeForecaster) ForecastMany(_ context.Context, locations []string, days int) []weather.LocationForecastEnvelope {
	f.gotLocs = locations
	f.gotDays = days
	return f.envelopes
}

func TestRunOnceRecordsProbeResults(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	metrics := observability.NewMetricsForTesting()
	probes := store.NewMemoryStore(10, 0, clock)

	svc := &fakeForecaster{envelopes: []weather.LocationForecastEnvelope{
		{Success: true, Data: make([]weather.HourlyForecastRecord, 24)},
		{Success: false, Error: "weatherapi forecast failed with status 500"},
	}}

	s := New("38.4664,-82.6441;somewhere;40.7128,-74.0060", time.Minute, svc, probes, metrics, clock, zerolog.Nop())
	assert.Equal(t, []string{"38.4664,-82.6441", "40.7128,-74.0060"}, s.Locations())

	s.RunOnce(context.Background())

	assert.Equal(t, 1, svc.gotDays)
	assert.Equal(t, s.Locations(), svc.gotLocs)

	ok, err := probes.Latest("38.4664,-82.6441")
	require.NoError(t, err)
	assert.True(t, ok.Success)
	assert.Equal(t, 24, ok.Records)
	assert.Equal(t, "fake", ok.Provider)
	assert.Equal(t, now, ok.CheckedAt)

	failed, err := probes.Latest("40.7128,-74.006")
	require.NoError(t, err)
	assert.False(t, failed.Success)
	assert.Contains(t, failed.Error, "500")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProbeHealthy.WithLabelValues("38.4664,-82.6441")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ProbeHealthy.WithLabelValues("40.7128,-74.006")))
}

func TestRunOnceStoresCanonicalKeys(t *testing.T) {
	probes := store.NewMemoryStore(10, 0, nil)
	svc := &fakeForecaster{envelopes: []weather.LocationForecastEnvelope{{Success: true}}}

	s := New(" 40.0 , -74.50 ", time.Minute, svc, probes, nil, nil, zerolog.Nop())
	s.RunOnce(context.Background())

	result, err := probes.Latest("40,-74.5")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestRunOnceCollapsedBatchMarksEveryLocationFailed(t *testing.T) {
	probes := store.NewMemoryStore(10, 0, nil)
	svc := &fakeForecaster{envelopes: []weather.LocationForecastEnvelope{
		{Success: false, Error: "batch forecast failed"},
	}}

	s := New("1,1;2,2", time.Minute, svc, probes, nil, nil, zerolog.Nop())
	s.RunOnce(context.Background())

	second, err := probes.Latest("2,2")
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.NotEmpty(t, second.Error)
}

func TestStartWithoutLocationsIsNoop(t *testing.T) {
	probes := store.NewMemoryStore(10, 0, nil)
	s := New("not-a-place", time.Minute, &fakeForecaster{}, probes, nil, nil, zerolog.Nop())

	require.NoError(t, s.Start())
	s.RunOnce(context.Background())
	s.Stop()

	assert.Empty(t, probes.LatestAll())
	_, err := probes.Latest("not-a-place")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
