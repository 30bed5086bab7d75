package weather

import (
	"context"
)

// ProviderClient fetches a raw forecast for one coordinate from one upstream.
// Implementations shape the request (endpoint, headers, units) but return the
// native body unchanged; failures are *UpstreamError.
type ProviderClient interface {
	Name() string
	FetchForecast(ctx context.Context, coord CoordinateQuery, days int) (RawPayload, error)
}

// Normalizer maps one provider's RawPayload into canonical hourly records.
// It performs no I/O and fails with *SchemaError only when the payload is not
// recognizable as a forecast list.
type Normalizer interface {
	Normalize(payload RawPayload) ([]HourlyForecastRecord, error)
	// Locate returns the location described by the payload itself, falling
	// back to payload.Location; nil when neither is available.
	Locate(payload RawPayload) *ResolvedLocation
}

// Provider pairs a client with the normalizer that understands its payloads.
type Provider struct {
	Client     ProviderClient
	Normalizer Normalizer
}

// Name returns the upstream's name.
func (p Provider) Name() string {
	if p.Client == nil {
		return ""
	}
	return p.Client.Name()
}
