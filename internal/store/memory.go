package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	// ErrNotFound is returned when no probe has been recorded for a location.
	ErrNotFound = errors.New("no probe results for location")
)

// ProbeResult is the outcome of one scheduled forecast probe for a location.
// It records health only; forecast data is never kept.
type ProbeResult struct {
	Location  string        `json:"location"` // canonical "lat,lon" key
	Provider  string        `json:"provider"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Records   int           `json:"records"`
	Duration  time.Duration `json:"durationNs"`
	CheckedAt time.Time     `json:"checkedAt"` // always UTC
}

// probeHistory holds a time-ordered list of probe results for a location.
type probeHistory struct {
	results []ProbeResult
}

// MemoryStore is a concurrency-safe in-memory probe history.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location, value: history
	data map[string]*probeHistory

	// retention configuration
	maxHistory int           // max number of results per location
	maxAge     time.Duration // optional max age for results
	clock      clockwork.Clock
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration, clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		data:       make(map[string]*probeHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		clock:      clock,
	}
}

// Save appends a result for its location and enforces retention.
func (s *MemoryStore) Save(result ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[result.Location]
	if !ok {
		history = &probeHistory{}
		s.data[result.Location] = history
	}

	history.results = append(history.results, result)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.results) > s.maxHistory {
		over := len(history.results) - s.maxHistory
		history.results = history.results[over:]
	}

	// Enforce retention by age; the newest result is always kept.
	if s.maxAge > 0 {
		cutoff := s.clock.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.results)-1; i++ {
			if !history.results[i].CheckedAt.Before(cutoff) {
				break
			}
		}
		history.results = history.results[i:]
	}
}

// Latest returns the most recent result for a location.
func (s *MemoryStore) Latest(location string) (ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[location]
	if !ok || len(history.results) == 0 {
		return ProbeResult{}, ErrNotFound
	}
	return history.results[len(history.results)-1], nil
}

// LatestAll returns the most recent result of every location, sorted by location.
func (s *MemoryStore) LatestAll() []ProbeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]ProbeResult, 0, len(s.data))
	for _, history := range s.data {
		if len(history.results) > 0 {
			results = append(results, history.results[len(history.results)-1])
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Location < results[j].Location })
	return results
}

// History returns all results for a location between from and to (inclusive).
func (s *MemoryStore) History(location string, from, to time.Time) ([]ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[location]
	if !ok || len(history.results) == 0 {
		return nil, ErrNotFound
	}

	var result []ProbeResult
	for _, r := range history.results {
		if !r.CheckedAt.Before(from) && !r.CheckedAt.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
