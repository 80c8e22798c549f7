package metrics

import (
	"testing"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestBridge_MirrorsRecords(t *testing.T) {
	c := NewCollector(testCollectorConfig())
	defer c.Close()

	b := NewBridge(noop.NewMeterProvider().Meter("test"))
	c.AttachBridge(b)

	_ = c.Record("cache.hits", 1)
	_ = c.Record("cache.hits", 1)
	_ = c.Observe("latency.ms", 50)

	// Instruments are cached per sanitized name.
	if len(b.counters) != 1 {
		t.Errorf("counters = %d, want 1", len(b.counters))
	}
	if len(b.histograms) != 1 {
		t.Errorf("histograms = %d, want 1", len(b.histograms))
	}
	if _, ok := b.counters["cache_hits"]; !ok {
		t.Error("counter should be keyed by sanitized name")
	}

	// Local summaries still work with the bridge attached.
	sum, err := c.Summary("cache.hits", 0)
	if err != nil || sum.Sum != 2 {
		t.Errorf("Summary = %+v, %v", sum, err)
	}
}
