// Package metrics aggregates named scalar series over sliding windows.
//
// A Collector records counter- and histogram-kind data points with
// millisecond timestamps, retains them for a bounded period, computes
// windowed summaries with nearest-rank percentiles, evaluates threshold
// alert rules with per-rule cooldowns, and exports either a JSON summary
// document or Prometheus-style text lines. Recorded points can be
// mirrored into an OpenTelemetry meter.
package metrics
