package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// responsePayload is the JSON document served by Handler.
type responsePayload struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Checks    map[string]checkPayload `json:"checks"`
}

type checkPayload struct {
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	DurationMs float64        `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
}

// Handler serves the aggregator's results as JSON. A degraded system
// still returns 200; an unhealthy one returns 503.
func Handler(agg *Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())

		payload := responsePayload{
			Status:    Overall(results).String(),
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]checkPayload, len(results)),
		}
		for name, res := range results {
			cp := checkPayload{
				Status:     res.Status.String(),
				Message:    res.Message,
				Details:    res.Details,
				DurationMs: float64(res.Duration.Milliseconds()),
			}
			if res.Error != nil {
				cp.Error = res.Error.Error()
			}
			payload.Checks[name] = cp
		}

		status := http.StatusOK
		if Overall(results) == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	})
}
