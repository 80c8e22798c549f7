package cache

import (
	"context"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Cache is the interface shared by the flat Store and the Tiered cache.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (nil, false) on miss or expiry.
// - Lifecycle: Dispose stops background work; a disposed cache rejects writes.
type Cache interface {
	// Get retrieves a value. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores a value using the configured default TTL.
	Set(ctx context.Context, key string, value any) error

	// SetTTL stores a value with an explicit TTL. TTL=0 means never expires.
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error

	// Has reports whether a live (non-expired) entry exists without
	// counting a hit or refreshing recency.
	Has(ctx context.Context, key string) bool

	// Delete removes an entry. Returns true if an entry was removed.
	Delete(ctx context.Context, key string) bool

	// Clear removes all entries.
	Clear(ctx context.Context)

	// Len returns the number of live entries.
	Len() int

	// Keys returns the keys of live entries, most recently used first.
	Keys() []string

	// Values returns the values of live entries, most recently used first.
	Values() []any

	// Entries returns snapshots of live entries, most recently used first.
	Entries() []Entry

	// Warm seeds the cache with entries ordered oldest to newest.
	Warm(ctx context.Context, entries []WarmEntry) error

	// On subscribes a handler to an event type and returns a subscription id.
	On(event EventType, handler Handler) int

	// Off removes a subscription created by On.
	Off(event EventType, id int)

	// Stats returns a snapshot of cache statistics.
	Stats() Stats

	// ResetStats zeroes hit/miss/eviction and timing counters.
	ResetStats()

	// Dispose stops background tasks and releases all entries.
	Dispose()
}

// WarmEntry is a single entry used to pre-populate a cache.
type WarmEntry struct {
	Key   string
	Value any
	TTL   time.Duration // 0 means never expires
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
