package cache

import (
	"context"
	"time"
)

// Typed is a type-safe view over a Cache for a single value type.
//
// Example:
//
//	people := cache.NewTyped[Person](store)
//	_ = people.Set(ctx, "person:1", p)
//	if p, ok := people.Get(ctx, "person:1"); ok { ... }
type Typed[V any] struct {
	inner Cache
}

// NewTyped wraps a cache with a typed accessor.
func NewTyped[V any](inner Cache) *Typed[V] {
	return &Typed[V]{inner: inner}
}

// Get retrieves a value. A miss or a value of the wrong dynamic type
// returns the zero value and false.
func (t *Typed[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	raw, ok := t.inner.Get(ctx, key)
	if !ok {
		return zero, false
	}
	value, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return value, true
}

// Set stores a value with the underlying cache's default TTL.
func (t *Typed[V]) Set(ctx context.Context, key string, value V) error {
	return t.inner.Set(ctx, key, value)
}

// SetTTL stores a value with an explicit TTL.
func (t *Typed[V]) SetTTL(ctx context.Context, key string, value V, ttl time.Duration) error {
	return t.inner.SetTTL(ctx, key, value, ttl)
}

// Delete removes an entry.
func (t *Typed[V]) Delete(ctx context.Context, key string) bool {
	return t.inner.Delete(ctx, key)
}

// Unwrap returns the underlying cache.
func (t *Typed[V]) Unwrap() Cache {
	return t.inner
}
