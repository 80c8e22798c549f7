package health

import (
	"context"
	"fmt"

	"github.com/itsbrex/attio-mcp-sub000/cache"
)

// StoreCheckerConfig configures a cache store health check.
type StoreCheckerConfig struct {
	// MinHitRate is the hit-rate floor below which the store is reported
	// degraded. Default: 0 (disabled)
	MinHitRate float64

	// MinLookups is how many lookups must have happened before the
	// hit-rate floor applies; a cold cache is not degraded.
	// Default: 100
	MinLookups uint64
}

// StoreChecker reports the health of a cache store from its statistics.
type StoreChecker struct {
	store *cache.Store
	cfg   StoreCheckerConfig
}

// NewStoreChecker creates a health checker over a cache store.
func NewStoreChecker(store *cache.Store, cfg StoreCheckerConfig) *StoreChecker {
	if cfg.MinLookups == 0 {
		cfg.MinLookups = 100
	}
	return &StoreChecker{store: store, cfg: cfg}
}

// Check reports unhealthy for a disposed store and degraded when the
// warm hit rate is below the configured floor.
func (c *StoreChecker) Check(_ context.Context) Result {
	if c.store == nil {
		return Unhealthy("cache store is nil", cache.ErrNilCache)
	}
	if c.store.Disposed() {
		return Unhealthy("cache store is disposed", cache.ErrDisposed)
	}

	stats := c.store.Stats()
	details := map[string]any{
		"size":         stats.Size,
		"max_size":     stats.MaxSize,
		"hit_rate":     stats.HitRate(),
		"memory_bytes": stats.MemoryUsage,
		"evictions":    stats.TotalEvictions(),
	}

	lookups := stats.Hits + stats.Misses
	if c.cfg.MinHitRate > 0 && lookups >= c.cfg.MinLookups && stats.HitRate() < c.cfg.MinHitRate {
		r := Degraded(fmt.Sprintf("hit rate %.2f below floor %.2f", stats.HitRate(), c.cfg.MinHitRate))
		r.Details = details
		return r
	}

	r := Healthy("cache store ok")
	r.Details = details
	return r
}

// Ensure StoreChecker implements Checker.
var _ Checker = (*StoreChecker)(nil)
