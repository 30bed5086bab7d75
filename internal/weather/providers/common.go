package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/weather"
)

// BreakerConfig controls the per-location circuit breakers.
type BreakerConfig struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxFailures uint32
}

// HTTPClientConfig bundles the HTTP client and resilience settings shared by providers.
type HTTPClientConfig struct {
	Client  *resty.Client
	Breaker BreakerConfig
	Metrics *observability.Metrics
	Logger  zerolog.Logger
}

// NewHTTPClient builds the resty client used for all outbound provider calls.
func NewHTTPClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

var (
	errNoHTTPClient = errors.New("http client not configured")
	errCircuitOpen  = errors.New("circuit breaker open")
	errMalformed    = errors.New("response body is not valid JSON")
)

// statusError is a non-2xx upstream response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("unexpected status %d", e.code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

// maxBreakers bounds how many per-location breakers a transport remembers.
const maxBreakers = 1024

// transport wraps one provider's client and its circuit breakers. Breakers are
// kept per location so one coordinate's failures never reject another's requests.
type transport struct {
	provider string
	client   *resty.Client
	settings gobreaker.Settings
	metrics  *observability.Metrics
	logger   zerolog.Logger

	mu       sync.Mutex
	breakers *lru.Cache // key: coordinate, value: *gobreaker.CircuitBreaker
}

func newTransport(provider string, cfg HTTPClientConfig) *transport {
	maxFailures := cfg.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NewUnregistered()
	}
	logger := cfg.Logger.With().Str("provider", provider).Logger()

	settings := gobreaker.Settings{
		MaxRequests: 1,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Client errors (bad coordinate, unsupported area) say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.code < http.StatusInternalServerError && se.code != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	// lru.New only fails for a non-positive size.
	breakers, _ := lru.New(maxBreakers)

	return &transport{
		provider: provider,
		client:   cfg.Client,
		settings: settings,
		metrics:  metrics,
		logger:   logger,
		breakers: breakers,
	}
}

// breaker returns the circuit breaker for key, creating it on first use.
func (t *transport) breaker(key string) *gobreaker.CircuitBreaker {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cb, ok := t.breakers.Get(key); ok {
		return cb.(*gobreaker.CircuitBreaker)
	}
	settings := t.settings
	settings.Name = t.provider + " " + key
	cb := gobreaker.NewCircuitBreaker(settings)
	t.breakers.Add(key, cb)
	return cb
}

// get performs one GET through the circuit breaker of key (the location) and
// returns the raw body. Any failure is returned as *weather.UpstreamError;
// nothing is retried.
func (t *transport) get(ctx context.Context, key, step, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	fail := func(reason string, status int, err error) error {
		t.metrics.UpstreamErrors.WithLabelValues(t.provider, step, reason).Inc()
		return &weather.UpstreamError{Provider: t.provider, Op: step, StatusCode: status, Err: err}
	}

	if t.client == nil {
		return nil, fail("config", 0, errNoHTTPClient)
	}

	start := time.Now()
	result, err := t.breaker(key).Execute(func() (interface{}, error) {
		req := t.client.R().SetContext(ctx)
		if params != nil {
			req.SetQueryParamsFromValues(params)
		}
		if len(headers) > 0 {
			req.SetHeaders(headers)
		}

		resp, execErr := req.Get(rawURL)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
			return nil, &statusError{code: resp.StatusCode(), body: snippet(resp.Body())}
		}
		return resp.Body(), nil
	})
	t.metrics.UpstreamDuration.WithLabelValues(t.provider, step).Observe(time.Since(start).Seconds())

	if err != nil {
		var se *statusError
		switch {
		case errors.As(err, &se):
			return nil, fail("status", se.code, se)
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, fail("circuit_open", 0, fmt.Errorf("%w: %v", errCircuitOpen, err))
		default:
			return nil, fail("transport", 0, err)
		}
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fail("transport", 0, fmt.Errorf("unexpected result type from circuit breaker"))
	}
	if !json.Valid(body) {
		return nil, fail("malformed", 0, errMalformed)
	}

	t.logger.Debug().Str("step", step).Dur("took", time.Since(start)).Msg("upstream request succeeded")
	return body, nil
}

// snippet trims an error body so it can be surfaced in an envelope.
func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
