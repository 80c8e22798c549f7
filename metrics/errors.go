package metrics

import "errors"

// Sentinel errors for metrics operations.
var (
	// ErrInvalidRule is returned when an alert rule is missing a metric
	// name or uses an unknown condition.
	ErrInvalidRule = errors.New("metrics: alert rule is invalid")

	// ErrUnknownMetric is returned when a summary is requested for a
	// name that has never been recorded.
	ErrUnknownMetric = errors.New("metrics: unknown metric")

	// ErrClosed is returned when recording into a closed collector.
	ErrClosed = errors.New("metrics: collector is closed")
)
