package cache

import "time"

// EvictionReason tags why an entry left the cache. Every removal other
// than a successful read records exactly one reason.
type EvictionReason int

const (
	// ReasonSize marks eviction caused by the entry-count bound.
	ReasonSize EvictionReason = iota
	// ReasonMemory marks eviction caused by the estimated-memory bound.
	ReasonMemory
	// ReasonTTL marks removal of an expired entry.
	ReasonTTL
	// ReasonManual marks explicit Delete and Clear removals.
	ReasonManual
	// ReasonReplaced marks the overwrite of a live key by a re-Set.
	ReasonReplaced
)

// String returns the string representation of the reason.
func (r EvictionReason) String() string {
	switch r {
	case ReasonSize:
		return "size"
	case ReasonMemory:
		return "memory"
	case ReasonTTL:
		return "ttl"
	case ReasonManual:
		return "manual"
	case ReasonReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time snapshot of cache statistics.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Size        int
	MaxSize     int
	MemoryUsage int64
	MaxMemory   int64
	Evictions   map[EvictionReason]uint64

	// AvgAccessTime and AvgWriteTime are rolling averages over all
	// reads and writes since the last ResetStats.
	AvgAccessTime time.Duration
	AvgWriteTime  time.Duration
}

// HitRate returns hits/(hits+misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// TotalEvictions returns the sum of all per-reason eviction counters.
func (s Stats) TotalEvictions() uint64 {
	var total uint64
	for _, n := range s.Evictions {
		total += n
	}
	return total
}

// counters is the internal mutable statistics state, guarded by the
// owning cache's mutex.
type counters struct {
	hits      uint64
	misses    uint64
	evictions map[EvictionReason]uint64

	accessTotal time.Duration
	accessOps   uint64
	writeTotal  time.Duration
	writeOps    uint64
}

func newCounters() counters {
	return counters{evictions: make(map[EvictionReason]uint64)}
}

func (c *counters) reset() {
	*c = newCounters()
}

func (c *counters) evict(reason EvictionReason) {
	c.evictions[reason]++
}

func (c *counters) observeAccess(d time.Duration) {
	c.accessTotal += d
	c.accessOps++
}

func (c *counters) observeWrite(d time.Duration) {
	c.writeTotal += d
	c.writeOps++
}

func (c *counters) avgAccess() time.Duration {
	if c.accessOps == 0 {
		return 0
	}
	return c.accessTotal / time.Duration(c.accessOps)
}

func (c *counters) avgWrite() time.Duration {
	if c.writeOps == 0 {
		return 0
	}
	return c.writeTotal / time.Duration(c.writeOps)
}

func (c *counters) evictionsCopy() map[EvictionReason]uint64 {
	out := make(map[EvictionReason]uint64, len(c.evictions))
	for reason, n := range c.evictions {
		out[reason] = n
	}
	return out
}
