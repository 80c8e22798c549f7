package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Condition compares a recorded value against a rule threshold.
type Condition int

const (
	// Above fires when value > threshold.
	Above Condition = iota
	// Below fires when value < threshold.
	Below
	// Equals fires when value == threshold.
	Equals
)

// String returns the string representation of the condition.
func (c Condition) String() string {
	switch c {
	case Above:
		return "above"
	case Below:
		return "below"
	case Equals:
		return "equals"
	default:
		return "unknown"
	}
}

// Rule is a threshold alert on a single metric.
type Rule struct {
	// Metric is the exact metric name the rule watches.
	Metric string

	// Threshold is compared against each recorded value.
	Threshold float64

	// Condition selects the comparison.
	Condition Condition

	// Cooldown is the minimum interval between firings of this rule.
	// Default: 1 minute
	Cooldown time.Duration
}

func (r Rule) matches(value float64) bool {
	switch r.Condition {
	case Above:
		return value > r.Threshold
	case Below:
		return value < r.Threshold
	case Equals:
		return value == r.Threshold
	default:
		return false
	}
}

// Alert is a structured alert event emitted when a rule fires.
type Alert struct {
	ID        string
	Rule      Rule
	Value     float64
	Timestamp time.Time
}

// AlertListener receives fired alerts. Listeners run synchronously on
// the recording goroutine and must return quickly.
type AlertListener func(Alert)

// alertEngine evaluates rules on every record with per-rule cooldowns.
type alertEngine struct {
	mu        sync.Mutex
	rules     []Rule
	lastFired []time.Time // parallel to rules
	nextID    int
	listeners map[int]AlertListener
}

func newAlertEngine() *alertEngine {
	return &alertEngine{listeners: make(map[int]AlertListener)}
}

func (a *alertEngine) addRule(r Rule) error {
	if r.Metric == "" || r.Condition < Above || r.Condition > Equals {
		return ErrInvalidRule
	}
	if r.Cooldown <= 0 {
		r.Cooldown = time.Minute
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.rules = append(a.rules, r)
	a.lastFired = append(a.lastFired, time.Time{})
	return nil
}

func (a *alertEngine) subscribe(fn AlertListener) int {
	if fn == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.listeners[a.nextID] = fn
	return a.nextID
}

func (a *alertEngine) unsubscribe(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.listeners, id)
}

func (a *alertEngine) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rules = nil
	a.lastFired = nil
	a.listeners = make(map[int]AlertListener)
}

// check evaluates all rules for a metric, firing each at most once per
// cooldown interval.
func (a *alertEngine) check(name string, value float64, ts time.Time) {
	var fired []Alert

	a.mu.Lock()
	for i, r := range a.rules {
		if r.Metric != name || !r.matches(value) {
			continue
		}
		if !a.lastFired[i].IsZero() && ts.Sub(a.lastFired[i]) < r.Cooldown {
			continue
		}
		a.lastFired[i] = ts
		fired = append(fired, Alert{
			ID:        uuid.NewString(),
			Rule:      r,
			Value:     value,
			Timestamp: ts,
		})
	}
	listeners := make([]AlertListener, 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()

	for _, alert := range fired {
		for _, fn := range listeners {
			fn(alert)
		}
	}
}

// AddRule registers a threshold alert rule.
func (c *Collector) AddRule(r Rule) error {
	return c.alerts.addRule(r)
}

// OnAlert subscribes a listener to fired alerts and returns a
// subscription id.
func (c *Collector) OnAlert(fn AlertListener) int {
	return c.alerts.subscribe(fn)
}

// OffAlert removes a listener registered with OnAlert.
func (c *Collector) OffAlert(id int) {
	c.alerts.unsubscribe(id)
}
