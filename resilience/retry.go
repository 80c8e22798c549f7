package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"time"
)

// Operation is a deferred unit of work.
type Operation func(ctx context.Context) (any, error)

// Policy configures the retry behavior.
type Policy struct {
	// MaxRetries is the number of retries beyond the first attempt.
	// Negative means no retries.
	// Default: 3
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// JitterRange is the symmetric jitter band as a fraction of the
	// delay: the actual delay is delay ± delay*JitterRange.
	// Default: 0.1
	JitterRange float64

	// RetryableCategories restricts retries to these categories. Empty
	// means the classifier's retryability decision applies.
	RetryableCategories []Category

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (p Policy) withDefaults() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	} else if p.MaxRetries == 0 {
		p.MaxRetries = 3
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 100 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.JitterRange < 0 || p.JitterRange > 1 {
		p.JitterRange = 0.1
	}
	return p
}

// Retry runs operations in a bounded retry loop with exponential
// backoff and symmetric jitter.
type Retry struct {
	policy Policy
}

// NewRetry creates a retry controller.
func NewRetry(policy Policy) *Retry {
	return &Retry{policy: policy.withDefaults()}
}

// Execute runs the operation until it succeeds, fails unretryably, or
// the retry budget is exhausted. It returns the result, the number of
// attempts made, and the last failure.
func (r *Retry) Execute(ctx context.Context, op Operation) (any, int, error) {
	if op == nil {
		return nil, 0, ErrNilOperation
	}

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		result, err := op(ctx)
		attempts++

		if err == nil {
			return result, attempts, nil
		}
		lastErr = err

		if !r.retryable(err) || attempt == r.policy.MaxRetries {
			break
		}

		delay := r.delayFor(attempt)
		if r.policy.OnRetry != nil {
			r.policy.OnRetry(attempt+1, err, delay)
		}

		select {
		case <-ctx.Done():
			return nil, attempts, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, attempts, lastErr
}

func (r *Retry) retryable(err error) bool {
	cls := Classify(err)
	if len(r.policy.RetryableCategories) > 0 {
		return slices.Contains(r.policy.RetryableCategories, cls.Category)
	}
	return cls.Retryable
}

// delayFor computes min(initial * multiplier^attempt, max) with
// symmetric jitter of ±(delay * jitterRange). Delays are non-decreasing
// in expectation and never exceed MaxDelay.
func (r *Retry) delayFor(attempt int) time.Duration {
	base := float64(r.policy.InitialDelay) * math.Pow(r.policy.Multiplier, float64(attempt))
	if base > float64(r.policy.MaxDelay) {
		base = float64(r.policy.MaxDelay)
	}

	if r.policy.JitterRange > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		base += base * r.policy.JitterRange * (rand.Float64()*2 - 1)
	}
	if base < 0 {
		base = 0
	}

	delay := time.Duration(base)
	if delay > r.policy.MaxDelay {
		delay = r.policy.MaxDelay
	}
	return delay
}

// Config returns the normalized retry policy.
func (r *Retry) Config() Policy {
	return r.policy
}
