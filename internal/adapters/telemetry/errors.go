package telemetry

import "errors"

var (
	// ErrSessionUnavailable is returned when a session could not be loaded
	// within the retry budget.
	ErrSessionUnavailable = errors.New("session unavailable")
	// ErrUpstream is returned for non-success responses from the provider.
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidSeasons is returned for a reversed season range.
	ErrInvalidSeasons = errors.New("invalid season range")
)
