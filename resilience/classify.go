package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Category is the fixed failure taxonomy.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNetwork
	CategoryTimeout
	CategoryRateLimit
	CategoryValidation
	CategoryPermission
	CategoryNotFound
	CategoryConflict
	CategoryQuotaExceeded
	CategoryServiceUnavailable
	CategoryDataIntegrity
	CategoryConfiguration
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryNetwork:
		return "network"
	case CategoryTimeout:
		return "timeout"
	case CategoryRateLimit:
		return "rate_limit"
	case CategoryValidation:
		return "validation"
	case CategoryPermission:
		return "permission"
	case CategoryNotFound:
		return "resource_not_found"
	case CategoryConflict:
		return "conflict"
	case CategoryQuotaExceeded:
		return "quota_exceeded"
	case CategoryServiceUnavailable:
		return "service_unavailable"
	case CategoryDataIntegrity:
		return "data_integrity"
	case CategoryConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Severity ranks how serious a classified failure is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "low"
	}
}

// Classification is the result of mapping a failure onto the taxonomy.
type Classification struct {
	Category  Category
	Severity  Severity
	Retryable bool
}

// StatusError carries an HTTP-style status code so the classifier can
// use it instead of message heuristics.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("status %d", e.Code)
}

// StatusCode returns the HTTP-style status code.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// statusCoder is satisfied by errors that expose a status code.
type statusCoder interface {
	StatusCode() int
}

// Classify maps an arbitrary failure onto the taxonomy. It prefers a
// status code when one is present and falls back to message-substring
// heuristics. Already-classified errors keep their classification.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Category: CategoryUnknown, Severity: SeverityLow}
	}

	var ec *ErrorContext
	if errors.As(err, &ec) {
		return Classification{Category: ec.Category, Severity: ec.Severity, Retryable: ec.Retryable}
	}

	category := categorize(err)
	return Classification{
		Category:  category,
		Severity:  severityOf(category),
		Retryable: retryableCategory(category),
	}
}

func categorize(err error) Category {
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	if errors.Is(err, ErrCircuitOpen) {
		return CategoryServiceUnavailable
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		if category := categoryFromStatus(sc.StatusCode()); category != CategoryUnknown {
			return category
		}
	}

	return categoryFromMessage(err.Error())
}

func categoryFromStatus(code int) Category {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CategoryValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return CategoryPermission
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return CategoryTimeout
	case http.StatusConflict:
		return CategoryConflict
	case http.StatusTooManyRequests:
		return CategoryRateLimit
	case http.StatusInsufficientStorage:
		return CategoryQuotaExceeded
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return CategoryServiceUnavailable
	default:
		return CategoryUnknown
	}
}

// categoryFromMessage applies substring heuristics. Timeout signals are
// checked before network signals: the two overlap syntactically (a
// connection-reset message can read as either) and timeouts must win.
func categoryFromMessage(msg string) Category {
	msg = strings.ToLower(msg)

	switch {
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return CategoryTimeout
	case containsAny(msg, "connection", "network", "dns", "socket", "reset by peer", "broken pipe", "no such host"):
		return CategoryNetwork
	case containsAny(msg, "rate limit", "too many requests", "throttl"):
		return CategoryRateLimit
	case containsAny(msg, "quota"):
		return CategoryQuotaExceeded
	case containsAny(msg, "unauthorized", "forbidden", "permission denied", "access denied"):
		return CategoryPermission
	case containsAny(msg, "not found", "does not exist", "no such"):
		return CategoryNotFound
	case containsAny(msg, "conflict", "already exists", "version mismatch"):
		return CategoryConflict
	case containsAny(msg, "unavailable", "overloaded", "try again later"):
		return CategoryServiceUnavailable
	case containsAny(msg, "corrupt", "checksum", "integrity", "inconsistent"):
		return CategoryDataIntegrity
	case containsAny(msg, "misconfigur", "configuration", "config"):
		return CategoryConfiguration
	case containsAny(msg, "invalid", "validation", "malformed", "bad request"):
		return CategoryValidation
	default:
		return CategoryUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// severityOf is a deterministic function of category.
func severityOf(category Category) Severity {
	switch category {
	case CategoryPermission, CategoryConfiguration:
		return SeverityCritical
	case CategoryDataIntegrity, CategoryServiceUnavailable:
		return SeverityHigh
	case CategoryNetwork, CategoryRateLimit, CategoryTimeout:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// retryableCategory is a fixed set membership test.
func retryableCategory(category Category) bool {
	switch category {
	case CategoryNetwork, CategoryRateLimit, CategoryTimeout, CategoryServiceUnavailable, CategoryConflict:
		return true
	default:
		return false
	}
}

// Ensure StatusError implements error and statusCoder.
var (
	_ error       = (*StatusError)(nil)
	_ statusCoder = (*StatusError)(nil)
)
