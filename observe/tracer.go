package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OpMeta describes an orchestrated operation for telemetry purposes.
type OpMeta struct {
	Name      string // logical operation name (required)
	BreakerID string // circuit breaker key, if any
	CacheKey  string // cache fallback key, if any
}

// SpanName returns the deterministic span name for this operation.
// Format: resilience.exec.<name>
func (m OpMeta) SpanName() string {
	return "resilience.exec." + m.Name
}

// Tracer wraps OpenTelemetry tracing with operation-scoped span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an orchestrated operation.
	StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer over an otel trace.Tracer. A nil tracer
// yields a noop implementation.
func NewTracer(tracer trace.Tracer) Tracer {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &tracerImpl{tracer: tracer}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("op.name", meta.Name),
	}
	if meta.BreakerID != "" {
		attrs = append(attrs, attribute.String("op.breaker", meta.BreakerID))
	}
	if meta.CacheKey != "" {
		attrs = append(attrs, attribute.String("op.cache_key", meta.CacheKey))
	}

	return t.tracer.Start(ctx, meta.SpanName(), trace.WithAttributes(attrs...))
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Ensure tracerImpl implements Tracer
var _ Tracer = (*tracerImpl)(nil)
