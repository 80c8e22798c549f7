package metrics

import (
	"math"
	"sort"
	"time"
)

// Percentiles holds the five standard percentiles of a windowed series.
type Percentiles struct {
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// Summary aggregates a metric's data points within a time window.
type Summary struct {
	Name        string        `json:"name"`
	Kind        Kind          `json:"kind"`
	Window      time.Duration `json:"window"`
	Min         float64       `json:"min"`
	Max         float64       `json:"max"`
	Avg         float64       `json:"avg"`
	Sum         float64       `json:"sum"`
	Count       int           `json:"count"`
	Rate        float64       `json:"rate"` // points per second
	Percentiles Percentiles   `json:"percentiles"`
}

func summarize(name string, kind Kind, values []float64, window time.Duration) Summary {
	s := Summary{Name: name, Kind: kind, Window: window, Count: len(values)}
	if len(values) == 0 {
		return s
	}

	s.Min = values[0]
	s.Max = values[0]
	for _, v := range values {
		s.Sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Avg = s.Sum / float64(len(values))
	if secs := window.Seconds(); secs > 0 {
		s.Rate = float64(len(values)) / secs
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s.Percentiles = Percentiles{
		P50: nearestRank(sorted, 50),
		P75: nearestRank(sorted, 75),
		P90: nearestRank(sorted, 90),
		P95: nearestRank(sorted, 95),
		P99: nearestRank(sorted, 99),
	}
	return s
}

// nearestRank returns the p-th percentile of a sorted slice using the
// nearest-rank method: index ceil(p/100 * n) - 1, clamped to >= 0.
func nearestRank(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
