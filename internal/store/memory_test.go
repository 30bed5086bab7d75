package store

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func probe(loc string, at time.Time, ok bool) ProbeResult {
	return ProbeResult{Location: loc, Provider: "weatherapi", Success: ok, CheckedAt: at}
}

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore(0, 0, clockwork.NewFakeClockAt(epoch))

	_, err := s.Latest("1,2")
	assert.True(t, errors.Is(err, ErrNotFound))

	s.Save(probe("1,2", epoch, true))
	s.Save(probe("1,2", epoch.Add(time.Minute), false))

	latest, err := s.Latest("1,2")
	require.NoError(t, err)
	assert.False(t, latest.Success)
	assert.Equal(t, epoch.Add(time.Minute), latest.CheckedAt)
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(3, 0, clockwork.NewFakeClockAt(epoch))
	for i := 0; i < 5; i++ {
		s.Save(probe("1,2", epoch.Add(time.Duration(i)*time.Minute), true))
	}

	history, err := s.History("1,2", epoch, epoch.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, epoch.Add(2*time.Minute), history[0].CheckedAt)
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	s := NewMemoryStore(0, time.Hour, clock)

	s.Save(probe("1,2", epoch, true))
	clock.Advance(30 * time.Minute)
	s.Save(probe("1,2", clock.Now(), true))
	clock.Advance(45 * time.Minute)
	s.Save(probe("1,2", clock.Now(), false))

	history, err := s.History("1,2", epoch, clock.Now())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, epoch.Add(30*time.Minute), history[0].CheckedAt)

	// The newest result survives even when it is itself older than maxAge.
	clock.Advance(5 * time.Hour)
	s.Save(probe("1,2", epoch, true))
	latest, err := s.Latest("1,2")
	require.NoError(t, err)
	assert.Equal(t, epoch, latest.CheckedAt)
}

func TestMemoryStoreHistoryRange(t *testing.T) {
	s := NewMemoryStore(0, 0, nil)
	for i := 0; i < 4; i++ {
		s.Save(probe("1,2", epoch.Add(time.Duration(i)*time.Hour), true))
	}

	history, err := s.History("1,2", epoch.Add(time.Hour), epoch.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = s.History("1,2", epoch.Add(10*time.Hour), epoch.Add(11*time.Hour))
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.History("3,4", epoch, epoch.Add(time.Hour))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreLatestAllSorted(t *testing.T) {
	s := NewMemoryStore(0, 0, nil)
	s.Save(probe("40.7128,-74.0060", epoch, true))
	s.Save(probe("38.4664,-82.6441", epoch, false))
	s.Save(probe("38.4664,-82.6441", epoch.Add(time.Minute), true))

	all := s.LatestAll()
	require.Len(t, all, 2)
	assert.Equal(t, "38.4664,-82.6441", all[0].Location)
	assert.True(t, all[0].Success)
	assert.Equal(t, "40.7128,-74.0060", all[1].Location)
}
