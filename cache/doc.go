// Package cache provides an in-process key/value cache engine.
//
// It provides a Store with TTL and LRU eviction under entry-count and
// memory bounds, a two-level Tiered cache with read promotion, a
// strategy Factory wired to metrics collection, lifecycle event
// subscription, snapshot export/import, and SHA-256-based key
// derivation for request-shaped inputs.
package cache
