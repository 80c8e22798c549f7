package cache

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// GetMany retrieves multiple keys. Missing or expired keys are absent
// from the result map.
func (s *Store) GetMany(ctx context.Context, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if value, ok := s.Get(ctx, key); ok {
			out[key] = value
		}
	}
	return out
}

// SetMany stores multiple values with the configured default TTL.
// It stops at the first invalid key.
func (s *Store) SetMany(ctx context.Context, values map[string]any) error {
	return s.SetManyTTL(ctx, values, s.cfg.DefaultTTL)
}

// SetManyTTL stores multiple values with an explicit TTL.
func (s *Store) SetManyTTL(ctx context.Context, values map[string]any, ttl time.Duration) error {
	for key, value := range values {
		if err := s.SetTTL(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMany removes multiple keys and returns how many were present.
func (s *Store) DeleteMany(ctx context.Context, keys []string) int {
	removed := 0
	for _, key := range keys {
		if s.Delete(ctx, key) {
			removed++
		}
	}
	return removed
}

// WarmParallel populates a cache from entries whose values are produced
// by a loader, bounding concurrency. Entry order is not preserved, so it
// is meant for bulk priming where recency does not matter yet.
func WarmParallel(ctx context.Context, c Cache, keys []string, workers int, load func(ctx context.Context, key string) (any, time.Duration, error)) error {
	if c == nil {
		return ErrNilCache
	}
	if workers <= 0 {
		workers = 4
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, key := range keys {
		g.Go(func() error {
			value, ttl, err := load(ctx, key)
			if err != nil {
				return err
			}
			return c.SetTTL(ctx, key, value, ttl)
		})
	}
	return g.Wait()
}
