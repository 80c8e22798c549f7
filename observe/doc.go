// Package observe composes telemetry for the caching and resilience
// subsystem: an OpenTelemetry tracer and meter with pluggable exporters,
// a structured JSON logger, and instruments plus a middleware for
// recording orchestrated operation executions.
package observe
