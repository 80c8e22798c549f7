package resilience

import (
	"sort"
	"sync"
)

// BreakerSet holds one circuit breaker per operation key, created on
// demand from a shared configuration. A breaker lives for the process
// lifetime (or until ResetAll).
type BreakerSet struct {
	cfg CircuitBreakerConfig

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewBreakerSet creates an empty breaker set.
func NewBreakerSet(cfg CircuitBreakerConfig) *BreakerSet {
	return &BreakerSet{
		cfg:      cfg,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for an operation key, creating it if needed.
func (s *BreakerSet) Get(key string) *CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	cb, ok := s.breakers[key]
	if !ok {
		cb = NewCircuitBreaker(s.cfg)
		s.breakers[key] = cb
	}
	return cb
}

// Keys returns the known operation keys, sorted.
func (s *BreakerSet) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.breakers))
	for key := range s.breakers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// States returns the current state of every known breaker.
func (s *BreakerSet) States() map[string]State {
	s.mu.Lock()
	breakers := make(map[string]*CircuitBreaker, len(s.breakers))
	for key, cb := range s.breakers {
		breakers[key] = cb
	}
	s.mu.Unlock()

	states := make(map[string]State, len(breakers))
	for key, cb := range breakers {
		states[key] = cb.State()
	}
	return states
}

// ResetAll returns every breaker to the closed state.
func (s *BreakerSet) ResetAll() {
	s.mu.Lock()
	breakers := make([]*CircuitBreaker, 0, len(s.breakers))
	for _, cb := range s.breakers {
		breakers = append(breakers, cb)
	}
	s.mu.Unlock()

	for _, cb := range breakers {
		cb.Reset()
	}
}
