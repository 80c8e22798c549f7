package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify_StatusCodes(t *testing.T) {
	tests := []struct {
		code int
		want Category
	}{
		{400, CategoryValidation},
		{401, CategoryPermission},
		{403, CategoryPermission},
		{404, CategoryNotFound},
		{408, CategoryTimeout},
		{409, CategoryConflict},
		{422, CategoryValidation},
		{429, CategoryRateLimit},
		{500, CategoryServiceUnavailable},
		{502, CategoryServiceUnavailable},
		{503, CategoryServiceUnavailable},
		{504, CategoryTimeout},
		{507, CategoryQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.code), func(t *testing.T) {
			cls := Classify(&StatusError{Code: tt.code})
			if cls.Category != tt.want {
				t.Errorf("Classify(status %d) = %v, want %v", tt.code, cls.Category, tt.want)
			}
		})
	}
}

func TestClassify_StatusBeatsMessage(t *testing.T) {
	// The message says "timeout" but the status code must win.
	err := &StatusError{Code: 404, Message: "lookup timeout while resolving"}
	cls := Classify(err)
	if cls.Category != CategoryNotFound {
		t.Errorf("Classify = %v, want %v", cls.Category, CategoryNotFound)
	}
}

func TestClassify_MessageHeuristics(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want Category
	}{
		{"timeout", "request timed out after 30s", CategoryTimeout},
		{"deadline", "deadline exceeded while waiting", CategoryTimeout},
		{"connection reset", "connection reset by peer", CategoryNetwork},
		{"dns", "dns lookup failed", CategoryNetwork},
		{"rate limit", "rate limit exceeded", CategoryRateLimit},
		{"throttled", "request throttled by upstream", CategoryRateLimit},
		{"quota", "storage quota exhausted", CategoryQuotaExceeded},
		{"unauthorized", "unauthorized: bad token", CategoryPermission},
		{"access denied", "access denied for user", CategoryPermission},
		{"not found", "record not found", CategoryNotFound},
		{"conflict", "resource already exists", CategoryConflict},
		{"unavailable", "service unavailable, try again later", CategoryServiceUnavailable},
		{"corruption", "checksum mismatch in segment", CategoryDataIntegrity},
		{"config", "missing configuration key", CategoryConfiguration},
		{"validation", "invalid argument: id", CategoryValidation},
		{"unknown", "something odd happened", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(errors.New(tt.msg))
			if cls.Category != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.msg, cls.Category, tt.want)
			}
		})
	}
}

func TestClassify_TimeoutBeatsNetwork(t *testing.T) {
	// Messages carrying both signals must classify as timeout.
	msgs := []string{
		"connection timed out",
		"network read timeout",
		"socket deadline exceeded",
	}
	for _, msg := range msgs {
		if cls := Classify(errors.New(msg)); cls.Category != CategoryTimeout {
			t.Errorf("Classify(%q) = %v, want %v", msg, cls.Category, CategoryTimeout)
		}
	}
}

func TestClassify_SentinelErrors(t *testing.T) {
	if cls := Classify(context.DeadlineExceeded); cls.Category != CategoryTimeout {
		t.Errorf("DeadlineExceeded = %v, want timeout", cls.Category)
	}
	if cls := Classify(fmt.Errorf("call rejected: %w", ErrCircuitOpen)); cls.Category != CategoryServiceUnavailable {
		t.Errorf("ErrCircuitOpen = %v, want service_unavailable", cls.Category)
	}
	if cls := Classify(nil); cls.Category != CategoryUnknown || cls.Retryable {
		t.Errorf("Classify(nil) = %+v, want unknown/not retryable", cls)
	}
}

func TestClassify_Severity(t *testing.T) {
	tests := []struct {
		category Category
		want     Severity
	}{
		{CategoryPermission, SeverityCritical},
		{CategoryConfiguration, SeverityCritical},
		{CategoryDataIntegrity, SeverityHigh},
		{CategoryServiceUnavailable, SeverityHigh},
		{CategoryNetwork, SeverityMedium},
		{CategoryRateLimit, SeverityMedium},
		{CategoryTimeout, SeverityMedium},
		{CategoryValidation, SeverityLow},
		{CategoryNotFound, SeverityLow},
		{CategoryConflict, SeverityLow},
		{CategoryQuotaExceeded, SeverityLow},
		{CategoryUnknown, SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			if got := severityOf(tt.category); got != tt.want {
				t.Errorf("severityOf(%v) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestClassify_RetryableSet(t *testing.T) {
	retryable := map[Category]bool{
		CategoryNetwork:            true,
		CategoryRateLimit:          true,
		CategoryTimeout:            true,
		CategoryServiceUnavailable: true,
		CategoryConflict:           true,
	}

	all := []Category{
		CategoryUnknown, CategoryNetwork, CategoryTimeout, CategoryRateLimit,
		CategoryValidation, CategoryPermission, CategoryNotFound, CategoryConflict,
		CategoryQuotaExceeded, CategoryServiceUnavailable, CategoryDataIntegrity,
		CategoryConfiguration,
	}
	for _, category := range all {
		if got := retryableCategory(category); got != retryable[category] {
			t.Errorf("retryableCategory(%v) = %v, want %v", category, got, retryable[category])
		}
	}
}

func TestClassify_PreservesExistingClassification(t *testing.T) {
	ec := NewErrorContext(errors.New("rate limit exceeded"))
	wrapped := fmt.Errorf("outer: %w", ec)

	cls := Classify(wrapped)
	if cls.Category != CategoryRateLimit || !cls.Retryable {
		t.Errorf("Classify(wrapped ErrorContext) = %+v, want rate_limit/retryable", cls)
	}
}

func TestNewErrorContext(t *testing.T) {
	cause := errors.New("connection refused")
	ec := NewErrorContext(cause)

	if ec.Category != CategoryNetwork {
		t.Errorf("Category = %v, want network", ec.Category)
	}
	if ec.CorrelationID == "" {
		t.Error("correlation id should be generated")
	}
	if ec.Suggestion == "" {
		t.Error("suggestion should be populated")
	}
	if ec.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if !errors.Is(ec, cause) {
		t.Error("cause should be reachable through errors.Is")
	}
}

func TestNewErrorContext_Options(t *testing.T) {
	ec := NewErrorContext(errors.New("whatever"),
		WithCorrelationID("corr-123"),
		WithContext(map[string]any{"op": "search"}),
		WithCategory(CategoryPermission),
	)

	if ec.CorrelationID != "corr-123" {
		t.Errorf("CorrelationID = %q, want corr-123", ec.CorrelationID)
	}
	if ec.Context["op"] != "search" {
		t.Errorf("Context = %v", ec.Context)
	}
	if ec.Category != CategoryPermission {
		t.Errorf("Category = %v, want permission", ec.Category)
	}
	// Category override recomputes the derived fields.
	if ec.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want critical", ec.Severity)
	}
	if ec.Retryable {
		t.Error("permission failures are not retryable")
	}
}

func TestErrorContext_Error(t *testing.T) {
	ec := NewErrorContext(errors.New("boom"), WithCorrelationID("abc"))
	got := ec.Error()
	want := fmt.Sprintf("resilience: %s [abc]: boom", ec.Category)
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
