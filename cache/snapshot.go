package cache

import (
	"context"
	"encoding/json"
	"time"
)

// snapshotVersion is bumped when the snapshot layout changes.
const snapshotVersion = 1

// Snapshot is a portable export of a store's live entries with enough
// metadata to reconstruct equivalent read behavior in a fresh store.
type Snapshot struct {
	Version int             `json:"version"`
	TakenAt time.Time       `json:"takenAt"`
	Entries []SnapshotEntry `json:"entries"`
}

// SnapshotEntry carries one exported entry. Entries are ordered least
// recently used first so that replaying them rebuilds recency order.
type SnapshotEntry struct {
	Key          string        `json:"key"`
	Value        any           `json:"value"`
	CreatedAt    time.Time     `json:"createdAt"`
	RemainingTTL time.Duration `json:"remainingTtl"` // 0 means never expires
	AccessCount  int64         `json:"accessCount"`
}

// Export captures all live (non-expired) entries.
func (s *Store) Export() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Version: snapshotVersion,
		TakenAt: now,
		Entries: make([]SnapshotEntry, 0, s.order.Len()),
	}
	// Back to front: least recently used first.
	for el := s.order.Back(); el != nil; el = el.Prev() {
		ent := el.Value.(*entry)
		if ent.expired(now) {
			continue
		}
		se := SnapshotEntry{
			Key:         ent.key,
			Value:       ent.value,
			CreatedAt:   ent.createdAt,
			AccessCount: ent.accessCount,
		}
		if !ent.expiresAt.IsZero() {
			se.RemainingTTL = ent.expiresAt.Sub(now)
		}
		snap.Entries = append(snap.Entries, se)
	}
	return snap
}

// Import installs snapshot entries, preserving creation time and access
// counts and re-arming remaining TTLs relative to now. Bounds are
// enforced after the load; import does not emit per-entry events.
func (s *Store) Import(_ context.Context, snap Snapshot) error {
	if snap.Version != snapshotVersion {
		s.emit(Event{Type: EventError, Err: ErrBadSnapshot, Timestamp: time.Now()})
		return ErrBadSnapshot
	}
	now := time.Now()

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}

	for _, se := range snap.Entries {
		if ValidateKey(se.Key) != nil {
			s.mu.Unlock()
			s.emit(Event{Type: EventError, Key: se.Key, Err: ErrBadSnapshot, Timestamp: now})
			return ErrBadSnapshot
		}
		if se.RemainingTTL < 0 {
			continue // expired in transit
		}
		if el, ok := s.items[se.Key]; ok {
			s.removeLocked(el, ReasonReplaced)
		}
		ent := &entry{
			key:            se.Key,
			value:          se.Value,
			createdAt:      se.CreatedAt,
			lastAccessedAt: now,
			accessCount:    se.AccessCount,
			size:           EstimateSize(se.Value),
		}
		if se.RemainingTTL > 0 {
			ent.ttl = se.RemainingTTL
			ent.expiresAt = now.Add(se.RemainingTTL)
		}
		s.installLocked(ent)
	}
	events := s.enforceBoundsLocked(now)
	s.mu.Unlock()

	s.emit(events...)
	return nil
}

// DecodeSnapshot parses a JSON-encoded snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	if snap.Version != snapshotVersion {
		return Snapshot{}, ErrBadSnapshot
	}
	return snap, nil
}
