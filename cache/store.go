package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Store is an in-memory key/value store with TTL and LRU eviction.
//
// Entries are bounded by count (MaxSize) and optionally by estimated
// memory (MaxMemory); exceeding either bound evicts least-recently-used
// entries one at a time until both bounds hold. Expiry is checked lazily
// on every read and swept periodically by a background task.
type Store struct {
	cfg Config

	mu     sync.Mutex
	items  map[string]*list.Element // key -> element in order
	order  *list.List               // front = most recently used
	memory int64
	stats  counters

	disposed bool
	stopOnce sync.Once
	done     chan struct{}

	*emitter
}

// NewStore creates a store and starts its background expiry sweep.
// Callers must Dispose the store to stop the sweep.
func NewStore(cfg Config) *Store {
	cfg = cfg.withDefaults()

	s := &Store{
		cfg:     cfg,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   newCounters(),
		done:    make(chan struct{}),
		emitter: newEmitter(),
	}

	if cfg.CleanupInterval > 0 {
		go s.sweepLoop(cfg.CleanupInterval)
	}
	return s
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Get retrieves a value. An entry past its TTL is treated as absent and
// removed with reason TTL.
func (s *Store) Get(_ context.Context, key string) (any, bool) {
	start := time.Now()

	s.mu.Lock()
	el, ok := s.items[key]
	if !ok {
		s.stats.misses++
		s.stats.observeAccess(time.Since(start))
		s.mu.Unlock()
		s.emit(Event{Type: EventMiss, Key: key, Timestamp: start})
		return nil, false
	}

	ent := el.Value.(*entry)
	if ent.expired(start) {
		s.removeLocked(el, ReasonTTL)
		s.stats.misses++
		s.stats.observeAccess(time.Since(start))
		s.mu.Unlock()
		s.emit(
			Event{Type: EventExpire, Key: key, Reason: ReasonTTL, Timestamp: start},
			Event{Type: EventMiss, Key: key, Timestamp: start},
		)
		return nil, false
	}

	ent.lastAccessedAt = start
	ent.accessCount++
	if s.cfg.UpdateAgeOnGet {
		s.order.MoveToFront(el)
	}
	s.stats.hits++
	s.stats.observeAccess(time.Since(start))
	value := ent.value
	s.mu.Unlock()

	s.emit(Event{Type: EventHit, Key: key, Timestamp: start})
	return value, true
}

// Set stores a value with the configured default TTL.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	return s.SetTTL(ctx, key, value, s.cfg.DefaultTTL)
}

// SetTTL stores a value with an explicit TTL. TTL=0 means never expires.
// Overwriting a live key records one REPLACED eviction for the old entry.
func (s *Store) SetTTL(_ context.Context, key string, value any, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		s.emit(Event{Type: EventError, Key: key, Err: err, Timestamp: time.Now()})
		return err
	}
	if ttl < 0 {
		ttl = 0
	}

	start := time.Now()
	size := EstimateSize(value)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}

	var events []Event
	if el, ok := s.items[key]; ok {
		s.removeLocked(el, ReasonReplaced)
		events = append(events, Event{Type: EventEvict, Key: key, Reason: ReasonReplaced, Timestamp: start})
	}

	ent := &entry{
		key:            key,
		value:          value,
		createdAt:      start,
		lastAccessedAt: start,
		ttl:            ttl,
		size:           size,
	}
	if ttl > 0 {
		ent.expiresAt = start.Add(ttl)
	}
	s.installLocked(ent)

	events = append(events, Event{Type: EventSet, Key: key, Timestamp: start})
	events = append(events, s.enforceBoundsLocked(start)...)

	s.stats.observeWrite(time.Since(start))
	s.mu.Unlock()

	s.emit(events...)
	return nil
}

// Has reports whether a live entry exists. It does not count a hit and
// does not refresh recency, but it does remove an expired entry.
func (s *Store) Has(_ context.Context, key string) bool {
	now := time.Now()

	s.mu.Lock()
	el, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	ent := el.Value.(*entry)
	if ent.expired(now) {
		s.removeLocked(el, ReasonTTL)
		s.mu.Unlock()
		s.emit(Event{Type: EventExpire, Key: key, Reason: ReasonTTL, Timestamp: now})
		return false
	}
	s.mu.Unlock()
	return true
}

// Delete removes an entry, recording a MANUAL eviction.
// Returns true if an entry was removed.
func (s *Store) Delete(_ context.Context, key string) bool {
	now := time.Now()

	s.mu.Lock()
	el, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.removeLocked(el, ReasonManual)
	s.mu.Unlock()

	s.emit(Event{Type: EventDelete, Key: key, Reason: ReasonManual, Timestamp: now})
	return true
}

// Clear removes all entries, recording one MANUAL eviction per entry.
func (s *Store) Clear(_ context.Context) {
	now := time.Now()

	s.mu.Lock()
	n := s.order.Len()
	s.items = make(map[string]*list.Element)
	s.order.Init()
	s.memory = 0
	s.stats.evictions[ReasonManual] += uint64(n)
	s.mu.Unlock()

	s.emit(Event{Type: EventClear, Timestamp: now})
}

// Len returns the number of entries, including any not yet swept expired ones.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Keys returns live keys, most recently used first.
func (s *Store) Keys() []string {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		ent := el.Value.(*entry)
		if ent.expired(now) {
			continue
		}
		keys = append(keys, ent.key)
	}
	return keys
}

// Values returns live values, most recently used first.
func (s *Store) Values() []any {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	values := make([]any, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		ent := el.Value.(*entry)
		if ent.expired(now) {
			continue
		}
		values = append(values, ent.value)
	}
	return values
}

// Entries returns snapshots of live entries, most recently used first.
func (s *Store) Entries() []Entry {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		ent := el.Value.(*entry)
		if ent.expired(now) {
			continue
		}
		entries = append(entries, ent.snapshot())
	}
	return entries
}

// GetEntry returns a snapshot of a live entry without counting a hit
// or refreshing recency.
func (s *Store) GetEntry(key string) (Entry, bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return Entry{}, false
	}
	ent := el.Value.(*entry)
	if ent.expired(now) {
		return Entry{}, false
	}
	return ent.snapshot(), true
}

// Touch re-arms an entry's TTL without changing its value. A ttl of 0
// re-applies the entry's current TTL. Returns false when the key is
// absent or expired.
func (s *Store) Touch(_ context.Context, key string, ttl time.Duration) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return false
	}
	ent := el.Value.(*entry)
	if ent.expired(now) {
		return false
	}

	if ttl > 0 {
		ent.ttl = ttl
	}
	if ent.ttl > 0 {
		ent.expiresAt = now.Add(ent.ttl)
	} else {
		ent.expiresAt = time.Time{}
	}
	ent.lastAccessedAt = now
	ent.accessCount++
	s.order.MoveToFront(el)
	return true
}

// Cleanup removes all expired entries, recording TTL evictions.
// Returns the number of entries removed.
func (s *Store) Cleanup() int {
	now := time.Now()

	s.mu.Lock()
	var events []Event
	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		ent := el.Value.(*entry)
		if ent.expired(now) {
			s.removeLocked(el, ReasonTTL)
			events = append(events, Event{Type: EventExpire, Key: ent.key, Reason: ReasonTTL, Timestamp: now})
		}
		el = prev
	}
	s.mu.Unlock()

	s.emit(events...)
	return len(events)
}

// Prune enforces the count and memory bounds immediately.
// Returns the number of entries evicted.
func (s *Store) Prune() int {
	now := time.Now()

	s.mu.Lock()
	events := s.enforceBoundsLocked(now)
	s.mu.Unlock()

	s.emit(events...)
	return len(events)
}

// MemoryUsage returns the total estimated byte size of stored entries.
func (s *Store) MemoryUsage() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory
}

// Warm seeds the store with entries ordered oldest to newest, so the
// final entry ends up most recently used.
func (s *Store) Warm(ctx context.Context, entries []WarmEntry) error {
	for _, e := range entries {
		if err := s.SetTTL(ctx, e.Key, e.Value, e.TTL); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns a snapshot of store statistics.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Hits:          s.stats.hits,
		Misses:        s.stats.misses,
		Size:          s.order.Len(),
		MaxSize:       s.cfg.MaxSize,
		MemoryUsage:   s.memory,
		MaxMemory:     s.cfg.MaxMemory,
		Evictions:     s.stats.evictionsCopy(),
		AvgAccessTime: s.stats.avgAccess(),
		AvgWriteTime:  s.stats.avgWrite(),
	}
}

// ResetStats zeroes hit/miss/eviction and timing counters.
func (s *Store) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.reset()
}

// Dispose stops the background sweep and releases all entries.
// A disposed store returns misses on Get and ErrDisposed on writes.
func (s *Store) Dispose() {
	s.stopOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	s.items = make(map[string]*list.Element)
	s.order.Init()
	s.memory = 0
	s.disposed = true
	s.mu.Unlock()
}

// Disposed reports whether Dispose was called.
func (s *Store) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// installLocked places a new entry at the most-recently-used position.
func (s *Store) installLocked(ent *entry) {
	el := s.order.PushFront(ent)
	s.items[ent.key] = el
	s.memory += ent.size
}

// removeLocked detaches an element and records the eviction reason.
func (s *Store) removeLocked(el *list.Element, reason EvictionReason) {
	ent := el.Value.(*entry)
	delete(s.items, ent.key)
	s.order.Remove(el)
	s.memory -= ent.size
	s.stats.evict(reason)
}

// enforceBoundsLocked evicts from the least-recently-used end, one entry
// at a time, until both the count and memory bounds are satisfied.
func (s *Store) enforceBoundsLocked(now time.Time) []Event {
	var events []Event
	for {
		var reason EvictionReason
		switch {
		case s.order.Len() > s.cfg.MaxSize:
			reason = ReasonSize
		case s.cfg.MaxMemory > 0 && s.memory > s.cfg.MaxMemory && s.order.Len() > 0:
			reason = ReasonMemory
		default:
			return events
		}

		el := s.order.Back()
		if el == nil {
			return events
		}
		ent := el.Value.(*entry)
		s.removeLocked(el, reason)
		events = append(events, Event{Type: EventEvict, Key: ent.key, Reason: reason, Timestamp: now})
	}
}

// Ensure Store implements Cache.
var _ Cache = (*Store)(nil)
