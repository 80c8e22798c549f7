package cache

import (
	"sync"
	"time"
)

// EventType identifies a cache lifecycle event.
type EventType int

const (
	// EventHit fires when Get returns a live entry.
	EventHit EventType = iota
	// EventMiss fires when Get finds no live entry.
	EventMiss
	// EventSet fires when an entry is installed.
	EventSet
	// EventDelete fires when an entry is removed explicitly.
	EventDelete
	// EventEvict fires when an entry is removed by a capacity or replace policy.
	EventEvict
	// EventExpire fires when an entry is removed because its TTL elapsed.
	EventExpire
	// EventClear fires once when the cache is cleared.
	EventClear
	// EventError fires when a write or import is rejected, for example
	// on an invalid key or a bad snapshot.
	EventError
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventHit:
		return "hit"
	case EventMiss:
		return "miss"
	case EventSet:
		return "set"
	case EventDelete:
		return "delete"
	case EventEvict:
		return "evict"
	case EventExpire:
		return "expire"
	case EventClear:
		return "clear"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event describes a single cache lifecycle event.
type Event struct {
	Type      EventType
	Key       string
	Reason    EvictionReason // set for EventEvict and EventExpire
	Tier      Tier           // set by Tiered caches, TierNone otherwise
	Err       error          // set for EventError
	Timestamp time.Time
}

// Handler receives cache events. Handlers run synchronously on the
// mutating goroutine after store locks are released; they must not
// call back into the cache's write operations.
type Handler func(Event)

// emitter implements On/Off subscription fan-out.
type emitter struct {
	mu     sync.RWMutex
	nextID int
	subs   map[EventType]map[int]Handler
}

func newEmitter() *emitter {
	return &emitter{subs: make(map[EventType]map[int]Handler)}
}

func (e *emitter) On(event EventType, handler Handler) int {
	if handler == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	if e.subs[event] == nil {
		e.subs[event] = make(map[int]Handler)
	}
	e.subs[event][id] = handler
	return id
}

func (e *emitter) Off(event EventType, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs[event], id)
}

func (e *emitter) emit(events ...Event) {
	for _, ev := range events {
		e.mu.RLock()
		handlers := make([]Handler, 0, len(e.subs[ev.Type]))
		for _, h := range e.subs[ev.Type] {
			handlers = append(handlers, h)
		}
		e.mu.RUnlock()

		for _, h := range handlers {
			h(ev)
		}
	}
}
