package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/itsbrex/attio-mcp-sub000/observe"
)

// FallbackCache is the slice of the cache surface the orchestrator
// needs for stale-result fallback and write-back. *cache.Store and
// *cache.Tiered satisfy it.
type FallbackCache interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
}

// ExecutePolicy describes how one call should be guarded.
type ExecutePolicy struct {
	// Name is the logical operation name used for telemetry.
	// Defaults to BreakerID when empty.
	Name string

	// BreakerID selects the circuit breaker guarding this call. Empty
	// means no breaker.
	BreakerID string

	// Retry configures the retry loop.
	Retry Policy

	// CacheKey enables cache fallback on terminal failure and result
	// write-back on success. Empty disables both.
	CacheKey string

	// CacheTTL is the TTL for the write-back. 0 uses the cache default.
	CacheTTL time.Duration

	// Fallback, if set, resolves the call when the breaker is open or
	// all recovery paths are exhausted.
	Fallback Operation
}

// Result is a successful orchestrated outcome.
type Result struct {
	Value any

	// FromCache marks a stale value served from the fallback cache (or
	// a fallback action) instead of a fresh execution.
	FromCache bool

	// Attempts is how many times the operation was invoked.
	Attempts int
}

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	// Breaker is the template configuration for per-key breakers.
	Breaker CircuitBreakerConfig

	// Cache, if set, serves stale fallbacks and stores write-backs.
	Cache FallbackCache

	// Logger reports fallback substitutions. Default: a nop logger.
	Logger observe.Logger

	// Metrics records per-execution telemetry. Default: nop.
	Metrics observe.Metrics

	// Tracer wraps each execution in a span. Default: nop.
	Tracer observe.Tracer
}

// Orchestrator composes circuit breaking, retry, and cache-backed
// fallback behind one Execute entry point. Every failure it surfaces is
// an *ErrorContext; raw underlying failures are never returned unwrapped.
type Orchestrator struct {
	breakers *BreakerSet
	cache    FallbackCache
	logger   observe.Logger
	metrics  observe.Metrics
	tracer   observe.Tracer

	mu        sync.Mutex
	fallbacks map[Category]Operation
	errStats  map[Category]uint64
}

// NewOrchestrator creates an orchestrator. The breaker set and fallback
// cache it owns may be shared across call sites; that sharing is what
// gives cross-call cache hits and shared breaker state.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.NopMetrics()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = observe.NewTracer(nil)
	}

	return &Orchestrator{
		breakers:  NewBreakerSet(cfg.Breaker),
		cache:     cfg.Cache,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		fallbacks: make(map[Category]Operation),
		errStats:  make(map[Category]uint64),
	}
}

// Execute runs the operation under the policy:
//
//  1. If a breaker is configured and open (and not due for a trial),
//     short-circuit without invoking the operation.
//  2. Otherwise run the operation through the retry loop.
//  3. On terminal failure, attempt the caller fallback, then the cache
//     fallback, then the per-category fallback action, then surface the
//     classified error.
//  4. On success, write the result back into the cache before returning.
func (o *Orchestrator) Execute(ctx context.Context, op Operation, policy ExecutePolicy) (Result, error) {
	if op == nil {
		return Result{}, NewErrorContext(ErrNilOperation)
	}

	meta := observe.OpMeta{Name: policy.Name, BreakerID: policy.BreakerID, CacheKey: policy.CacheKey}
	if meta.Name == "" {
		meta.Name = policy.BreakerID
	}

	ctx, span := o.tracer.StartSpan(ctx, meta)
	start := time.Now()

	result, err := o.execute(ctx, op, policy)

	o.tracer.EndSpan(span, err)
	o.metrics.RecordExecution(ctx, meta, time.Since(start), result.Attempts, err)
	return result, err
}

func (o *Orchestrator) execute(ctx context.Context, op Operation, policy ExecutePolicy) (Result, error) {
	var breaker *CircuitBreaker
	if policy.BreakerID != "" {
		breaker = o.breakers.Get(policy.BreakerID)
		if err := breaker.Allow(); err != nil {
			// Fail fast without invoking the operation at all.
			return o.resolveFailure(ctx, policy, err, 0)
		}
	}

	value, attempts, err := NewRetry(policy.Retry).Execute(ctx, op)
	if breaker != nil {
		breaker.RecordResult(err)
	}

	if err != nil {
		return o.resolveFailure(ctx, policy, err, attempts)
	}

	if policy.CacheKey != "" && o.cache != nil {
		var werr error
		if policy.CacheTTL > 0 {
			werr = o.cache.SetTTL(ctx, policy.CacheKey, value, policy.CacheTTL)
		} else {
			werr = o.cache.Set(ctx, policy.CacheKey, value)
		}
		if werr != nil {
			o.logger.Warn(ctx, "cache write-back failed",
				observe.Field{Key: "cache_key", Value: policy.CacheKey},
				observe.Field{Key: "error", Value: werr.Error()},
			)
		}
	}
	return Result{Value: value, Attempts: attempts}, nil
}

// resolveFailure walks the fallback chain for a terminal failure.
func (o *Orchestrator) resolveFailure(ctx context.Context, policy ExecutePolicy, cause error, attempts int) (Result, error) {
	ec := NewErrorContext(cause)
	o.recordError(ec.Category)

	if policy.Fallback != nil {
		if value, err := policy.Fallback(ctx); err == nil {
			return Result{Value: value, FromCache: true, Attempts: attempts}, nil
		}
	}

	if policy.CacheKey != "" && o.cache != nil {
		if value, ok := o.cache.Get(ctx, policy.CacheKey); ok {
			o.logger.Warn(ctx, "serving stale cache fallback",
				observe.Field{Key: "cache_key", Value: policy.CacheKey},
				observe.Field{Key: "category", Value: ec.Category.String()},
				observe.Field{Key: "correlation_id", Value: ec.CorrelationID},
			)
			return Result{Value: value, FromCache: true, Attempts: attempts}, nil
		}
	}

	o.mu.Lock()
	action := o.fallbacks[ec.Category]
	o.mu.Unlock()
	if action != nil {
		if value, err := action(ctx); err == nil {
			return Result{Value: value, FromCache: true, Attempts: attempts}, nil
		}
	}

	return Result{Attempts: attempts}, ec
}

func (o *Orchestrator) recordError(category Category) {
	o.mu.Lock()
	o.errStats[category]++
	o.mu.Unlock()
}

// SetFallbackAction registers a last-resort resolver for one failure
// category, consulted after the caller fallback and the cache.
func (o *Orchestrator) SetFallbackAction(category Category, action Operation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if action == nil {
		delete(o.fallbacks, category)
		return
	}
	o.fallbacks[category] = action
}

// ErrorStats returns how many terminal failures were recorded per
// category since construction.
func (o *Orchestrator) ErrorStats() map[Category]uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[Category]uint64, len(o.errStats))
	for category, n := range o.errStats {
		out[category] = n
	}
	return out
}

// Breakers exposes the orchestrator's breaker set, mainly for health
// checks and tests.
func (o *Orchestrator) Breakers() *BreakerSet {
	return o.breakers
}

// ResetCircuitBreakers returns every breaker to the closed state.
func (o *Orchestrator) ResetCircuitBreakers() {
	o.breakers.ResetAll()
}
