package cache

import (
	"encoding/json"
	"time"
)

// Entry is a point-in-time snapshot of a cached entry and its metadata.
type Entry struct {
	Key            string
	Value          any
	CreatedAt      time.Time
	LastAccessedAt time.Time
	TTL            time.Duration // 0 means never expires
	ExpiresAt      time.Time     // zero when TTL is 0
	AccessCount    int64
	Size           int64 // estimated bytes, see EstimateSize
}

// entry is the mutable in-store representation.
type entry struct {
	key            string
	value          any
	createdAt      time.Time
	lastAccessedAt time.Time
	ttl            time.Duration
	expiresAt      time.Time
	accessCount    int64
	size           int64
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (e *entry) snapshot() Entry {
	return Entry{
		Key:            e.key,
		Value:          e.value,
		CreatedAt:      e.createdAt,
		LastAccessedAt: e.lastAccessedAt,
		TTL:            e.ttl,
		ExpiresAt:      e.expiresAt,
		AccessCount:    e.accessCount,
		Size:           e.size,
	}
}

// Fixed size costs for values the estimator cannot inspect cheaply.
const (
	sizeBool    = 4
	sizeNumber  = 8
	sizeNil     = 0
	sizeUnknown = 64
)

// EstimateSize returns a rough byte-size estimate for a cached value.
// Strings count two bytes per character for Unicode safety; structured
// values are measured by their serialized length, doubled the same way.
// The estimate drives memory-bound eviction only, never correctness.
func EstimateSize(value any) int64 {
	switch v := value.(type) {
	case nil:
		return sizeNil
	case string:
		return int64(len(v)) * 2
	case []byte:
		return int64(len(v))
	case bool:
		return sizeBool
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return sizeNumber
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return sizeUnknown
		}
		return int64(len(data)) * 2
	}
}
