package cache

import (
	"context"
	"math"
	"sync"
	"time"
)

// Tier identifies which level of a Tiered cache served a lookup.
type Tier int

const (
	// TierNone means no tier served the lookup (miss).
	TierNone Tier = iota
	// TierL1 is the small, fast level checked first.
	TierL1
	// TierL2 is the large level behind L1.
	TierL2
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierL1:
		return "l1"
	case TierL2:
		return "l2"
	default:
		return "none"
	}
}

// TieredConfig configures a Tiered cache.
type TieredConfig struct {
	// Config carries the total capacity; it is split between the tiers.
	Config

	// L1Ratio is the fraction of total capacity given to L1.
	// Default: 0.1
	L1Ratio float64

	// DisableWriteThrough stops Set from writing into L2 synchronously.
	// Write-through is on by default.
	DisableWriteThrough bool
}

// Tiered composes a small L1 store in front of a large L2 store.
// L2 hits are promoted into L1 with their remaining TTL; sets land in
// L1 and, with write-through, in L2 as well.
type Tiered struct {
	cfg TieredConfig
	l1  *Store
	l2  *Store

	mu     sync.Mutex
	hits   uint64
	misses uint64

	*emitter
}

// NewTiered creates a tiered cache, splitting the configured capacity
// roughly 10/90 between L1 and L2.
func NewTiered(cfg TieredConfig) *Tiered {
	cfg.Config = cfg.Config.withDefaults()
	if cfg.L1Ratio <= 0 || cfg.L1Ratio >= 1 {
		cfg.L1Ratio = 0.1
	}

	l1Size := int(math.Round(float64(cfg.MaxSize) * cfg.L1Ratio))
	if l1Size < 1 {
		l1Size = 1
	}
	l2Size := cfg.MaxSize - l1Size
	if l2Size < 1 {
		l2Size = 1
	}

	l1Cfg := cfg.Config
	l1Cfg.MaxSize = l1Size
	l2Cfg := cfg.Config
	l2Cfg.MaxSize = l2Size
	if cfg.MaxMemory > 0 {
		l1Cfg.MaxMemory = int64(math.Round(float64(cfg.MaxMemory) * cfg.L1Ratio))
		if l1Cfg.MaxMemory < 1 {
			l1Cfg.MaxMemory = 1
		}
		l2Cfg.MaxMemory = cfg.MaxMemory - l1Cfg.MaxMemory
	}

	t := &Tiered{
		cfg:     cfg,
		l1:      NewStore(l1Cfg),
		l2:      NewStore(l2Cfg),
		emitter: newEmitter(),
	}

	// Forward removal events from the tiers with their origin tagged.
	forward := func(tier Tier) Handler {
		return func(e Event) {
			e.Tier = tier
			t.emit(e)
		}
	}
	for _, ev := range []EventType{EventEvict, EventExpire, EventError} {
		t.l1.On(ev, forward(TierL1))
		t.l2.On(ev, forward(TierL2))
	}
	return t
}

// Lookup retrieves a value and reports which tier served it. An L2 hit
// promotes the entry into L1 with its remaining TTL.
func (t *Tiered) Lookup(ctx context.Context, key string) (any, Tier, bool) {
	now := time.Now()

	if value, ok := t.l1.Get(ctx, key); ok {
		t.recordHit()
		t.emit(Event{Type: EventHit, Key: key, Tier: TierL1, Timestamp: now})
		return value, TierL1, true
	}

	if value, ok := t.l2.Get(ctx, key); ok {
		// Promote with the remaining lifetime so L1 never outlives L2.
		// An entry that vanished or ran out between the read and the
		// snapshot is served without promotion; SetTTL would clamp its
		// negative remainder to never-expiring.
		if ent, ok := t.l2.GetEntry(key); ok {
			if remaining, ok := promotionTTL(ent, time.Now()); ok {
				_ = t.l1.SetTTL(ctx, key, value, remaining)
			}
		}
		t.recordHit()
		t.emit(Event{Type: EventHit, Key: key, Tier: TierL2, Timestamp: now})
		return value, TierL2, true
	}

	t.recordMiss()
	t.emit(Event{Type: EventMiss, Key: key, Timestamp: now})
	return nil, TierNone, false
}

// promotionTTL returns the TTL to promote an L2 entry into L1 with.
// Never-expiring entries promote with TTL 0; entries whose expiry has
// already passed by promotion time must not promote at all, since a
// non-positive TTL would store them as never-expiring.
func promotionTTL(ent Entry, now time.Time) (time.Duration, bool) {
	if ent.ExpiresAt.IsZero() {
		return 0, true
	}
	remaining := ent.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// Get retrieves a value. See Lookup for tier attribution.
func (t *Tiered) Get(ctx context.Context, key string) (any, bool) {
	value, _, ok := t.Lookup(ctx, key)
	return value, ok
}

// Set stores a value with the configured default TTL.
func (t *Tiered) Set(ctx context.Context, key string, value any) error {
	return t.SetTTL(ctx, key, value, t.cfg.DefaultTTL)
}

// SetTTL stores a value in L1 and, unless write-through is disabled,
// synchronously in L2.
func (t *Tiered) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := t.l1.SetTTL(ctx, key, value, ttl); err != nil {
		return err
	}
	if !t.cfg.DisableWriteThrough {
		if err := t.l2.SetTTL(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	t.emit(Event{Type: EventSet, Key: key, Timestamp: time.Now()})
	return nil
}

// Has reports whether a live entry exists in either tier.
func (t *Tiered) Has(ctx context.Context, key string) bool {
	return t.l1.Has(ctx, key) || t.l2.Has(ctx, key)
}

// Delete removes an entry from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) bool {
	d1 := t.l1.Delete(ctx, key)
	d2 := t.l2.Delete(ctx, key)
	removed := d1 || d2
	if removed {
		t.emit(Event{Type: EventDelete, Key: key, Reason: ReasonManual, Timestamp: time.Now()})
	}
	return removed
}

// Clear empties both tiers.
func (t *Tiered) Clear(ctx context.Context) {
	t.l1.Clear(ctx)
	t.l2.Clear(ctx)
	t.emit(Event{Type: EventClear, Timestamp: time.Now()})
}

// Len returns the number of distinct live keys across both tiers.
func (t *Tiered) Len() int {
	return len(t.Keys())
}

// Keys returns the union of both tiers' keys, L1 first.
func (t *Tiered) Keys() []string {
	l1Keys := t.l1.Keys()
	seen := make(map[string]struct{}, len(l1Keys))
	for _, k := range l1Keys {
		seen[k] = struct{}{}
	}
	keys := l1Keys
	for _, k := range t.l2.Keys() {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Values returns the union of both tiers' values, with L1 winning for
// keys present in both since L1 holds the more recent view.
func (t *Tiered) Values() []any {
	entries := t.Entries()
	values := make([]any, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values
}

// Entries returns the union of both tiers' entries with L1 precedence.
func (t *Tiered) Entries() []Entry {
	l1Entries := t.l1.Entries()
	seen := make(map[string]struct{}, len(l1Entries))
	for _, e := range l1Entries {
		seen[e.Key] = struct{}{}
	}
	entries := l1Entries
	for _, e := range t.l2.Entries() {
		if _, ok := seen[e.Key]; !ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Touch re-arms an entry's TTL in whichever tiers hold it.
func (t *Tiered) Touch(ctx context.Context, key string, ttl time.Duration) bool {
	t1 := t.l1.Touch(ctx, key, ttl)
	t2 := t.l2.Touch(ctx, key, ttl)
	return t1 || t2
}

// Cleanup sweeps expired entries from both tiers.
func (t *Tiered) Cleanup() int {
	return t.l1.Cleanup() + t.l2.Cleanup()
}

// Prune enforces bounds on both tiers.
func (t *Tiered) Prune() int {
	return t.l1.Prune() + t.l2.Prune()
}

// MemoryUsage returns the combined estimated byte size of both tiers.
func (t *Tiered) MemoryUsage() int64 {
	return t.l1.MemoryUsage() + t.l2.MemoryUsage()
}

// Warm populates L2 with the full entry set and L1 with only the most
// recent ~10% slice, matching steady-state occupancy rather than a cold
// cache. Entries are ordered oldest to newest.
func (t *Tiered) Warm(ctx context.Context, entries []WarmEntry) error {
	if err := t.l2.Warm(ctx, entries); err != nil {
		return err
	}

	hot := len(entries) / 10
	if hot < 1 && len(entries) > 0 {
		hot = 1
	}
	return t.l1.Warm(ctx, entries[len(entries)-hot:])
}

// Stats returns combined statistics: tiered hit/miss counters, the
// distinct key count, and the merged per-reason eviction counters.
func (t *Tiered) Stats() Stats {
	t.mu.Lock()
	hits, misses := t.hits, t.misses
	t.mu.Unlock()

	l1 := t.l1.Stats()
	l2 := t.l2.Stats()

	evictions := make(map[EvictionReason]uint64, len(l1.Evictions)+len(l2.Evictions))
	for reason, n := range l1.Evictions {
		evictions[reason] += n
	}
	for reason, n := range l2.Evictions {
		evictions[reason] += n
	}

	return Stats{
		Hits:        hits,
		Misses:      misses,
		Size:        t.Len(),
		MaxSize:     l1.MaxSize + l2.MaxSize,
		MemoryUsage: l1.MemoryUsage + l2.MemoryUsage,
		MaxMemory:   t.cfg.MaxMemory,
		Evictions:   evictions,
	}
}

// TierStats returns each tier's own statistics, L1 first.
func (t *Tiered) TierStats() (Stats, Stats) {
	return t.l1.Stats(), t.l2.Stats()
}

// ResetStats zeroes the tiered counters and both tiers' counters.
func (t *Tiered) ResetStats() {
	t.mu.Lock()
	t.hits, t.misses = 0, 0
	t.mu.Unlock()
	t.l1.ResetStats()
	t.l2.ResetStats()
}

// Dispose releases both tiers.
func (t *Tiered) Dispose() {
	t.l1.Dispose()
	t.l2.Dispose()
}

func (t *Tiered) recordHit() {
	t.mu.Lock()
	t.hits++
	t.mu.Unlock()
}

func (t *Tiered) recordMiss() {
	t.mu.Lock()
	t.misses++
	t.mu.Unlock()
}

// Ensure Tiered implements Cache.
var _ Cache = (*Tiered)(nil)
