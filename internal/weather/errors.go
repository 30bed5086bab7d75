package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLocationFormat is returned for unparsable or out-of-range coordinate strings.
	ErrInvalidLocationFormat = errors.New("invalid location format")
	// ErrUpstream marks transport, timeout and non-success failures from a provider.
	ErrUpstream = errors.New("upstream error")
	// ErrSchema marks a provider response whose shape is not a forecast list.
	ErrSchema = errors.New("unrecognized forecast schema")
)

// UpstreamError describes a failed provider call.
type UpstreamError struct {
	Provider   string
	Op         string
	StatusCode int
	// Resolved is set when a two-step provider resolved the coordinate before failing.
	Resolved *ResolvedLocation
	Err      error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Provider, e.Op)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s with status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrUpstream for any UpstreamError.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// SchemaError is returned by a Normalizer that cannot recognize the payload.
type SchemaError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s payload: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s payload: %s", e.Provider, e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
