package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"
)

// Bridge mirrors recorded data points into an OpenTelemetry meter so the
// same series reach whatever exporter the observer is configured with.
// Counter-kind points become Float64Counter adds, histogram-kind points
// become Float64Histogram records. Instruments are created lazily per
// metric name.
type Bridge struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Float64Counter
	histograms map[string]metric.Float64Histogram
}

// NewBridge creates a bridge over the given meter.
func NewBridge(meter metric.Meter) *Bridge {
	return &Bridge{
		meter:      meter,
		counters:   make(map[string]metric.Float64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// AttachBridge mirrors all subsequent records into the bridge.
func (c *Collector) AttachBridge(b *Bridge) {
	c.mu.Lock()
	c.bridge = b
	c.mu.Unlock()
}

func (b *Bridge) record(name string, value float64, kind Kind) {
	ctx := context.Background()
	promName := sanitizeName(name)

	switch kind {
	case KindHistogram:
		hist, err := b.histogram(promName)
		if err != nil {
			return
		}
		hist.Record(ctx, value)
	default:
		counter, err := b.counter(promName)
		if err != nil {
			return
		}
		counter.Add(ctx, value)
	}
}

func (b *Bridge) counter(name string) (metric.Float64Counter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.counters[name]; ok {
		return c, nil
	}
	c, err := b.meter.Float64Counter(name)
	if err != nil {
		return nil, err
	}
	b.counters[name] = c
	return c, nil
}

func (b *Bridge) histogram(name string) (metric.Float64Histogram, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if h, ok := b.histograms[name]; ok {
		return h, nil
	}
	h, err := b.meter.Float64Histogram(name)
	if err != nil {
		return nil, err
	}
	b.histograms[name] = h
	return h, nil
}
