package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrNilOperation is returned when Execute is given a nil operation.
	ErrNilOperation = errors.New("resilience: operation is nil")
)
