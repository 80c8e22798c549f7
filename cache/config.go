package cache

import "time"

// Config configures a Store.
type Config struct {
	// MaxSize is the maximum number of entries before LRU eviction.
	// Default: 1000
	MaxSize int

	// MaxMemory bounds the total estimated byte size of entries.
	// Default: 0 (unbounded)
	MaxMemory int64

	// DefaultTTL is applied by Set when no explicit TTL is given.
	// Default: 5 minutes. Negative disables the default so Set produces
	// never-expiring entries; SetTTL with 0 does the same per entry.
	DefaultTTL time.Duration

	// CleanupInterval is the period of the background expiry sweep.
	// Default: 1 minute. Negative disables the sweep entirely.
	CleanupInterval time.Duration

	// UpdateAgeOnGet moves an entry to the most-recently-used position
	// on every successful Get. The zero value disables it; DefaultConfig
	// enables it.
	UpdateAgeOnGet bool
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize:         1000,
		MaxMemory:       0,
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: time.Minute,
		UpdateAgeOnGet:  true,
	}
}

// withDefaults fills unset numeric fields.
func (c Config) withDefaults() Config {
	if c.MaxSize <= 0 {
		c.MaxSize = 1000
	}
	if c.MaxMemory < 0 {
		c.MaxMemory = 0
	}
	if c.DefaultTTL == 0 {
		c.DefaultTTL = 5 * time.Minute
	}
	if c.DefaultTTL < 0 {
		c.DefaultTTL = 0
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = time.Minute
	}
	return c
}
