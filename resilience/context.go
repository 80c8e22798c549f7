package resilience

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorContext wraps a classified failure with the metadata surfaced to
// callers. Treat a constructed ErrorContext as read-only.
type ErrorContext struct {
	Category      Category
	Severity      Severity
	Retryable     bool
	Timestamp     time.Time
	CorrelationID string
	Context       map[string]any
	Suggestion    string

	cause error
}

// ErrorOption customizes a new ErrorContext.
type ErrorOption func(*ErrorContext)

// WithCorrelationID sets an explicit correlation id. When none is given
// one is generated.
func WithCorrelationID(id string) ErrorOption {
	return func(ec *ErrorContext) { ec.CorrelationID = id }
}

// WithContext attaches caller metadata to the error.
func WithContext(kv map[string]any) ErrorOption {
	return func(ec *ErrorContext) { ec.Context = kv }
}

// WithCategory overrides the classifier's category, recomputing severity
// and retryability.
func WithCategory(category Category) ErrorOption {
	return func(ec *ErrorContext) {
		ec.Category = category
		ec.Severity = severityOf(category)
		ec.Retryable = retryableCategory(category)
	}
}

// NewErrorContext classifies a failure and wraps it. The cause remains
// reachable through errors.Unwrap/errors.Is/errors.As.
func NewErrorContext(err error, opts ...ErrorOption) *ErrorContext {
	cls := Classify(err)
	ec := &ErrorContext{
		Category:  cls.Category,
		Severity:  cls.Severity,
		Retryable: cls.Retryable,
		Timestamp: time.Now(),
		cause:     err,
	}
	for _, opt := range opts {
		opt(ec)
	}
	if ec.CorrelationID == "" {
		ec.CorrelationID = uuid.NewString()
	}
	if ec.Suggestion == "" {
		ec.Suggestion = suggestionFor(ec.Category)
	}
	return ec
}

// Error implements the error interface.
func (ec *ErrorContext) Error() string {
	return fmt.Sprintf("resilience: %s [%s]: %v", ec.Category, ec.CorrelationID, ec.cause)
}

// Unwrap returns the original failure.
func (ec *ErrorContext) Unwrap() error {
	return ec.cause
}

// suggestionFor maps a category to a human-readable remediation hint.
func suggestionFor(category Category) string {
	switch category {
	case CategoryNetwork:
		return "check network connectivity and upstream reachability"
	case CategoryTimeout:
		return "retry with a longer deadline or reduce request size"
	case CategoryRateLimit:
		return "reduce request rate or wait for the rate window to reset"
	case CategoryValidation:
		return "correct the request parameters before retrying"
	case CategoryPermission:
		return "verify credentials and granted scopes"
	case CategoryNotFound:
		return "verify the resource identifier"
	case CategoryConflict:
		return "refetch the latest resource state and retry"
	case CategoryQuotaExceeded:
		return "raise the quota or reduce usage"
	case CategoryServiceUnavailable:
		return "wait for the upstream service to recover"
	case CategoryDataIntegrity:
		return "inspect stored data for corruption before retrying"
	case CategoryConfiguration:
		return "review the service configuration"
	default:
		return "inspect the underlying error"
	}
}

// Ensure ErrorContext implements error.
var _ error = (*ErrorContext)(nil)
