// Package health provides liveness checks for the caching and
// resilience subsystem: checkers over cache stores and circuit
// breakers, an aggregator that rolls them up to a single status, and an
// HTTP handler exposing the results as JSON.
package health
