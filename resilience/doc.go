// Package resilience provides failure classification and recovery
// controls for calls to unreliable collaborators.
//
// It provides a pure error classifier over a fixed taxonomy, a
// per-operation-key circuit breaker, bounded exponential-backoff retry,
// and an Orchestrator that composes breaker, retry, and cache-backed
// fallback behind a single Execute entry point.
package resilience
