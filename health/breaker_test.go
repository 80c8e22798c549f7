package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itsbrex/attio-mcp-sub000/resilience"
)

func TestBreakerChecker_AllClosed(t *testing.T) {
	set := resilience.NewBreakerSet(resilience.CircuitBreakerConfig{})
	set.Get("a")
	set.Get("b")

	checker := NewBreakerChecker(set)
	r := checker.Check(context.Background())

	if r.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", r.Status)
	}
	if r.Details["a"] != "closed" || r.Details["b"] != "closed" {
		t.Errorf("Details = %v", r.Details)
	}
}

func TestBreakerChecker_OpenBreaker(t *testing.T) {
	set := resilience.NewBreakerSet(resilience.CircuitBreakerConfig{
		FailureThreshold: 1,
		Timeout:          time.Minute,
	})
	set.Get("ok")
	set.Get("down").RecordResult(errors.New("boom"))

	checker := NewBreakerChecker(set)
	r := checker.Check(context.Background())

	if r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", r.Status)
	}
	if r.Details["down"] != "open" {
		t.Errorf("Details[down] = %v, want open", r.Details["down"])
	}
}

func TestBreakerChecker_HalfOpenBreaker(t *testing.T) {
	set := resilience.NewBreakerSet(resilience.CircuitBreakerConfig{
		FailureThreshold: 1,
		Timeout:          10 * time.Millisecond,
	})
	set.Get("recovering").RecordResult(errors.New("boom"))
	time.Sleep(20 * time.Millisecond)

	checker := NewBreakerChecker(set)
	r := checker.Check(context.Background())

	if r.Status != StatusDegraded {
		t.Errorf("Status = %v, want degraded", r.Status)
	}
}

func TestBreakerChecker_NilSet(t *testing.T) {
	checker := NewBreakerChecker(nil)
	if r := checker.Check(context.Background()); r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", r.Status)
	}
}

func TestBreakerChecker_EmptySet(t *testing.T) {
	set := resilience.NewBreakerSet(resilience.CircuitBreakerConfig{})
	checker := NewBreakerChecker(set)
	if r := checker.Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", r.Status)
	}
}
