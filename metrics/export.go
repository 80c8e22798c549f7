package metrics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ExportJSON returns a JSON document mapping metric name to its windowed
// summary. A window of 0 uses the full retention period.
func (c *Collector) ExportJSON(window time.Duration) ([]byte, error) {
	names := c.Names()
	sort.Strings(names)

	doc := make(map[string]Summary, len(names))
	for _, name := range names {
		summary, err := c.Summary(name, window)
		if err != nil {
			continue // pruned between Names and Summary
		}
		doc[name] = summary
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ExportText renders Prometheus-style lines: "name value timestampMs"
// for counter-kind metrics, and _sum/_count/_p50/_p95/_p99 suffixed
// lines for histogram-kind metrics. Metric names are sanitized to the
// usual [a-zA-Z0-9_] charset.
func (c *Collector) ExportText(window time.Duration) string {
	names := c.Names()
	sort.Strings(names)

	now := time.Now().UnixMilli()
	var b strings.Builder
	for _, name := range names {
		summary, err := c.Summary(name, window)
		if err != nil {
			continue
		}
		promName := sanitizeName(name)

		if summary.Kind == KindHistogram {
			fmt.Fprintf(&b, "%s_sum %v %d\n", promName, summary.Sum, now)
			fmt.Fprintf(&b, "%s_count %d %d\n", promName, summary.Count, now)
			fmt.Fprintf(&b, "%s_p50 %v %d\n", promName, summary.Percentiles.P50, now)
			fmt.Fprintf(&b, "%s_p95 %v %d\n", promName, summary.Percentiles.P95, now)
			fmt.Fprintf(&b, "%s_p99 %v %d\n", promName, summary.Percentiles.P99, now)
			continue
		}
		fmt.Fprintf(&b, "%s %v %d\n", promName, summary.Sum, now)
	}
	return b.String()
}

// sanitizeName maps a dotted metric name onto the Prometheus charset.
func sanitizeName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			out[i] = ch
		case ch == '_':
			out[i] = ch
		default:
			out[i] = '_'
		}
	}
	if len(out) > 0 && out[0] >= '0' && out[0] <= '9' {
		return "_" + string(out)
	}
	return string(out)
}
