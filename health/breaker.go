package health

import (
	"context"
	"fmt"

	"github.com/itsbrex/attio-mcp-sub000/resilience"
)

// BreakerChecker reports the health of a set of circuit breakers: any
// open breaker makes the check unhealthy, any half-open breaker makes
// it degraded.
type BreakerChecker struct {
	set *resilience.BreakerSet
}

// NewBreakerChecker creates a health checker over a breaker set.
func NewBreakerChecker(set *resilience.BreakerSet) *BreakerChecker {
	return &BreakerChecker{set: set}
}

// Check inspects every known breaker.
func (c *BreakerChecker) Check(_ context.Context) Result {
	if c.set == nil {
		return Unhealthy("breaker set is nil", ErrCheckFailed)
	}

	states := c.set.States()
	details := make(map[string]any, len(states))
	open, halfOpen := 0, 0
	for key, state := range states {
		details[key] = state.String()
		switch state {
		case resilience.StateOpen:
			open++
		case resilience.StateHalfOpen:
			halfOpen++
		}
	}

	switch {
	case open > 0:
		r := Unhealthy(fmt.Sprintf("%d circuit(s) open", open), ErrCheckFailed)
		r.Details = details
		return r
	case halfOpen > 0:
		r := Degraded(fmt.Sprintf("%d circuit(s) recovering", halfOpen))
		r.Details = details
		return r
	default:
		r := Healthy("all circuits closed")
		r.Details = details
		return r
	}
}

// Ensure BreakerChecker implements Checker.
var _ Checker = (*BreakerChecker)(nil)
