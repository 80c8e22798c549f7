package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errFail = errors.New("downstream failed")

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})
	ctx := context.Background()

	fail := func(context.Context) error { return errFail }

	for i := 0; i < 2; i++ {
		if err := cb.Execute(ctx, fail); !errors.Is(err, errFail) {
			t.Fatalf("attempt %d error = %v, want errFail", i, err)
		}
		if cb.State() != StateClosed {
			t.Fatalf("state after %d failures = %v, want closed", i+1, cb.State())
		}
	}

	_ = cb.Execute(ctx, fail) // third failure trips the breaker
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	// Open circuit rejects without invoking the operation.
	invoked := false
	err := cb.Execute(ctx, func(context.Context) error {
		invoked = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute on open circuit = %v, want ErrCircuitOpen", err)
	}
	if invoked {
		t.Error("operation must not run while the circuit is open")
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})
	ctx := context.Background()

	_ = cb.Execute(ctx, func(context.Context) error { return errFail })
	_ = cb.Execute(ctx, func(context.Context) error { return errFail })
	_ = cb.Execute(ctx, func(context.Context) error { return nil })
	_ = cb.Execute(ctx, func(context.Context) error { return errFail })
	_ = cb.Execute(ctx, func(context.Context) error { return errFail })

	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed (success reset the count)", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		Timeout:          30 * time.Millisecond,
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, func(context.Context) error { return errFail })
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	time.Sleep(40 * time.Millisecond)
	if cb.State() != StateHalfOpen {
		t.Fatalf("state after timeout = %v, want half-open", cb.State())
	}

	// Successful trial closes the circuit.
	if err := cb.Execute(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("trial call failed: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state after trial success = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		Timeout:          30 * time.Millisecond,
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, func(context.Context) error { return errFail })
	time.Sleep(40 * time.Millisecond)

	_ = cb.Execute(ctx, func(context.Context) error { return errFail })
	if cb.State() != StateOpen {
		t.Fatalf("state after failed trial = %v, want open", cb.State())
	}

	// The open timeout restarted with the trial failure.
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow immediately after reopen = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreaker_SuccessThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          20 * time.Millisecond,
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, func(context.Context) error { return errFail })
	time.Sleep(30 * time.Millisecond)

	_ = cb.Execute(ctx, func(context.Context) error { return nil })
	if cb.State() != StateHalfOpen {
		t.Fatalf("state after one trial success = %v, want half-open", cb.State())
	}

	_ = cb.Execute(ctx, func(context.Context) error { return nil })
	if cb.State() != StateClosed {
		t.Errorf("state after two trial successes = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenLimitsTrials(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          20 * time.Millisecond,
	})

	cb.RecordResult(errFail)
	time.Sleep(30 * time.Millisecond)

	if err := cb.Allow(); err != nil {
		t.Fatalf("first trial should be admitted, got %v", err)
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("second concurrent trial = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreaker_IsFailureFilter(t *testing.T) {
	benign := errors.New("benign")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return err != nil && !errors.Is(err, benign) },
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, func(context.Context) error { return benign })
	if cb.State() != StateClosed {
		t.Errorf("filtered error should not trip the breaker, state = %v", cb.State())
	}

	_ = cb.Execute(ctx, func(context.Context) error { return errFail })
	if cb.State() != StateOpen {
		t.Errorf("unfiltered error should trip the breaker, state = %v", cb.State())
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	var transitions [][2]State
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		Timeout:          20 * time.Millisecond,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, [2]State{from, to})
		},
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, func(context.Context) error { return errFail })
	time.Sleep(30 * time.Millisecond)
	_ = cb.Execute(ctx, func(context.Context) error { return nil })

	want := [][2]State{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})

	cb.RecordResult(errFail)
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("state after Reset = %v, want closed", cb.State())
	}
	m := cb.Metrics()
	if m.Failures != 0 || m.Successes != 0 {
		t.Errorf("Metrics after Reset = %+v, want zeroed counters", m)
	}
}

func TestCircuitBreaker_Metrics(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 5})

	cb.RecordResult(errFail)
	cb.RecordResult(errFail)

	m := cb.Metrics()
	if m.State != StateClosed {
		t.Errorf("State = %v, want closed", m.State)
	}
	if m.Failures != 2 {
		t.Errorf("Failures = %d, want 2", m.Failures)
	}
	if m.LastFailure.IsZero() {
		t.Error("LastFailure should be set")
	}
}

func TestBreakerSet(t *testing.T) {
	set := NewBreakerSet(CircuitBreakerConfig{FailureThreshold: 1})

	a := set.Get("svc-a")
	if a == nil {
		t.Fatal("Get should create a breaker on demand")
	}
	if set.Get("svc-a") != a {
		t.Error("Get should return the same breaker for the same key")
	}

	// Keys are isolated.
	a.RecordResult(errFail)
	if set.Get("svc-b").State() != StateClosed {
		t.Error("other keys must not be affected")
	}

	states := set.States()
	if states["svc-a"] != StateOpen || states["svc-b"] != StateClosed {
		t.Errorf("States() = %v", states)
	}

	keys := set.Keys()
	if len(keys) != 2 || keys[0] != "svc-a" || keys[1] != "svc-b" {
		t.Errorf("Keys() = %v, want sorted [svc-a svc-b]", keys)
	}

	set.ResetAll()
	if set.Get("svc-a").State() != StateClosed {
		t.Error("ResetAll should close all breakers")
	}
}
