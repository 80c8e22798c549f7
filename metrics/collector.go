package metrics

import (
	"sync"
	"time"
)

// Kind distinguishes how a series is summarized and exported.
type Kind int

const (
	// KindCounter marks scalar series (counts, gauges).
	KindCounter Kind = iota
	// KindHistogram marks latency-style series exported with
	// _sum/_count/_p50/_p95/_p99 lines.
	KindHistogram
)

// Point is a single named, timestamped scalar observation.
type Point struct {
	Name      string
	Value     float64
	Timestamp time.Time
}

// Config configures a Collector.
type Config struct {
	// Retention is how long data points are kept.
	// Default: 1 hour
	Retention time.Duration

	// FlushInterval is the period of the background retention sweep.
	// Default: 1 minute. Negative disables the sweep.
	FlushInterval time.Duration

	// MaxPointsPerSeries caps each series; the oldest points are dropped
	// first when the cap is reached.
	// Default: 10000
	MaxPointsPerSeries int
}

func (c Config) withDefaults() Config {
	if c.Retention <= 0 {
		c.Retention = time.Hour
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = time.Minute
	}
	if c.MaxPointsPerSeries <= 0 {
		c.MaxPointsPerSeries = 10000
	}
	return c
}

type series struct {
	kind   Kind
	points []Point
}

// Collector records named scalar metrics and retains them for a bounded
// sliding window.
type Collector struct {
	cfg Config

	mu     sync.Mutex
	series map[string]*series
	closed bool

	alerts *alertEngine
	bridge *Bridge

	stopOnce sync.Once
	done     chan struct{}
}

// NewCollector creates a collector and starts its retention sweep.
// Callers must Close the collector to stop the sweep.
func NewCollector(cfg Config) *Collector {
	cfg = cfg.withDefaults()

	c := &Collector{
		cfg:    cfg,
		series: make(map[string]*series),
		alerts: newAlertEngine(),
		done:   make(chan struct{}),
	}

	if cfg.FlushInterval > 0 {
		go c.sweepLoop(cfg.FlushInterval)
	}
	return c
}

func (c *Collector) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.Flush()
		}
	}
}

// Record adds a counter-kind data point stamped with the current time.
func (c *Collector) Record(name string, value float64) error {
	return c.RecordAt(name, value, time.Now(), KindCounter)
}

// Observe adds a histogram-kind data point stamped with the current time.
func (c *Collector) Observe(name string, value float64) error {
	return c.RecordAt(name, value, time.Now(), KindHistogram)
}

// RecordAt adds a data point with an explicit timestamp and kind.
func (c *Collector) RecordAt(name string, value float64, ts time.Time, kind Kind) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	ser, ok := c.series[name]
	if !ok {
		ser = &series{kind: kind}
		c.series[name] = ser
	}
	ser.points = append(ser.points, Point{Name: name, Value: value, Timestamp: ts})
	if len(ser.points) > c.cfg.MaxPointsPerSeries {
		ser.points = ser.points[len(ser.points)-c.cfg.MaxPointsPerSeries:]
	}
	bridge := c.bridge
	kind = ser.kind
	c.mu.Unlock()

	if bridge != nil {
		bridge.record(name, value, kind)
	}
	c.alerts.check(name, value, ts)
	return nil
}

// Summary computes a windowed summary for a metric. A window of 0 uses
// the full retention period.
func (c *Collector) Summary(name string, window time.Duration) (Summary, error) {
	if window <= 0 {
		window = c.cfg.Retention
	}
	cutoff := time.Now().Add(-window)

	c.mu.Lock()
	ser, ok := c.series[name]
	if !ok {
		c.mu.Unlock()
		return Summary{}, ErrUnknownMetric
	}
	values := make([]float64, 0, len(ser.points))
	for _, p := range ser.points {
		if p.Timestamp.Before(cutoff) {
			continue
		}
		values = append(values, p.Value)
	}
	kind := ser.kind
	c.mu.Unlock()

	return summarize(name, kind, values, window), nil
}

// Names returns all recorded metric names.
func (c *Collector) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	return names
}

// Flush discards points older than the retention period and returns the
// number dropped.
func (c *Collector) Flush() int {
	cutoff := time.Now().Add(-c.cfg.Retention)

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for name, ser := range c.series {
		keep := ser.points[:0]
		for _, p := range ser.points {
			if p.Timestamp.Before(cutoff) {
				dropped++
				continue
			}
			keep = append(keep, p)
		}
		ser.points = keep
		if len(ser.points) == 0 {
			delete(c.series, name)
		}
	}
	return dropped
}

// Reset discards all points, rules, and listeners.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.series = make(map[string]*series)
	c.mu.Unlock()
	c.alerts.reset()
}

// Close stops the retention sweep. Further records return ErrClosed.
func (c *Collector) Close() {
	c.stopOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
