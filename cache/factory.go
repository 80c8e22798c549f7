package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/itsbrex/attio-mcp-sub000/metrics"
	"github.com/itsbrex/attio-mcp-sub000/observe"
)

// Built-in strategy names.
const (
	StrategyMemory = "memory"
	StrategyTiered = "tiered"
)

// Constructor builds a cache for a named strategy.
type Constructor func(cfg Config) (Cache, error)

// Factory constructs caches by strategy name and wires metrics
// collection to them.
type Factory struct {
	mu         sync.RWMutex
	strategies map[string]Constructor

	collector    *metrics.Collector
	logger       observe.Logger
	pullInterval time.Duration
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithCollector attaches a metrics collector; every created cache will
// feed it via event subscription and a periodic stats pull.
func WithCollector(c *metrics.Collector) FactoryOption {
	return func(f *Factory) { f.collector = c }
}

// WithLogger sets the logger used to report fallback substitutions.
func WithLogger(l observe.Logger) FactoryOption {
	return func(f *Factory) { f.logger = l }
}

// WithStatsPullInterval sets how often created caches push their stats
// into the collector. Default: 15 seconds.
func WithStatsPullInterval(d time.Duration) FactoryOption {
	return func(f *Factory) { f.pullInterval = d }
}

// NewFactory creates a factory with the built-in "memory" and "tiered"
// strategies registered.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		strategies:   make(map[string]Constructor),
		logger:       observe.NopLogger(),
		pullInterval: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.pullInterval <= 0 {
		f.pullInterval = 15 * time.Second
	}

	f.strategies[StrategyMemory] = func(cfg Config) (Cache, error) {
		return NewStore(cfg), nil
	}
	f.strategies[StrategyTiered] = func(cfg Config) (Cache, error) {
		return NewTiered(TieredConfig{Config: cfg}), nil
	}
	return f
}

// Register adds a custom strategy. Registering an existing name
// replaces its constructor.
func (f *Factory) Register(name string, ctor Constructor) error {
	if name == "" {
		return ErrUnknownStrategy
	}
	if ctor == nil {
		return ErrNilConstructor
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strategies[name] = ctor
	return nil
}

// Strategies returns the registered strategy names, sorted.
func (f *Factory) Strategies() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.strategies))
	for name := range f.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create constructs a cache for the named strategy and attaches metrics
// collection to it.
func (f *Factory) Create(strategy string, cfg Config) (Cache, error) {
	f.mu.RLock()
	ctor, ok := f.strategies[strategy]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	c, err := ctor(cfg)
	if err != nil {
		return nil, fmt.Errorf("cache: strategy %q: %w", strategy, err)
	}

	if f.collector != nil {
		c = f.instrument(c, strategy)
	}
	return c, nil
}

// CreateWithFallback constructs the preferred strategy and, when its
// construction fails, transparently constructs the fallback strategy
// instead, logging the substitution.
func (f *Factory) CreateWithFallback(preferred, fallback string, cfg Config) (Cache, error) {
	c, err := f.Create(preferred, cfg)
	if err == nil {
		return c, nil
	}

	f.logger.Warn(context.Background(), "cache strategy construction failed, substituting fallback",
		observe.Field{Key: "preferred", Value: preferred},
		observe.Field{Key: "fallback", Value: fallback},
		observe.Field{Key: "error", Value: err.Error()},
	)
	return f.Create(fallback, cfg)
}

// instrumented feeds a collector from a cache's events and a periodic
// stats pull, and stops the pull when the cache is disposed.
type instrumented struct {
	Cache
	stopOnce sync.Once
	done     chan struct{}
}

func (f *Factory) instrument(c Cache, strategy string) Cache {
	prefix := "cache." + strategy
	collector := f.collector

	record := func(name string) Handler {
		return func(Event) { _ = collector.Record(name, 1) }
	}
	c.On(EventHit, record(prefix+".hits"))
	c.On(EventMiss, record(prefix+".misses"))
	c.On(EventSet, record(prefix+".sets"))
	c.On(EventDelete, record(prefix+".deletes"))
	c.On(EventEvict, record(prefix+".evictions"))
	c.On(EventExpire, record(prefix+".expirations"))
	c.On(EventError, record(prefix+".errors"))

	ic := &instrumented{Cache: c, done: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(f.pullInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ic.done:
				return
			case <-ticker.C:
				stats := c.Stats()
				_ = collector.Record(prefix+".size", float64(stats.Size))
				_ = collector.Record(prefix+".hit_rate", stats.HitRate())
				_ = collector.Record(prefix+".memory_bytes", float64(stats.MemoryUsage))
			}
		}
	}()
	return ic
}

// Dispose stops the stats pull and disposes the underlying cache.
func (i *instrumented) Dispose() {
	i.stopOnce.Do(func() { close(i.done) })
	i.Cache.Dispose()
}
