package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_Healthy(t *testing.T) {
	agg := NewAggregator()
	agg.Register("ok", CheckFunc(func(context.Context) Result { return Healthy("fine") }))

	rec := httptest.NewRecorder()
	Handler(agg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var payload struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if payload.Status != "healthy" {
		t.Errorf("payload status = %q", payload.Status)
	}
	if payload.Checks["ok"].Message != "fine" {
		t.Errorf("check payload = %+v", payload.Checks["ok"])
	}
}

func TestHandler_Unhealthy(t *testing.T) {
	agg := NewAggregator()
	agg.Register("down", CheckFunc(func(context.Context) Result {
		return Unhealthy("broken", errors.New("database unreachable"))
	}))

	rec := httptest.NewRecorder()
	Handler(agg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	var payload struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Error string `json:"error"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if payload.Status != "unhealthy" {
		t.Errorf("payload status = %q", payload.Status)
	}
	if payload.Checks["down"].Error != "database unreachable" {
		t.Errorf("error field = %q", payload.Checks["down"].Error)
	}
}

func TestHandler_DegradedStill200(t *testing.T) {
	agg := NewAggregator()
	agg.Register("slow", CheckFunc(func(context.Context) Result { return Degraded("lagging") }))

	rec := httptest.NewRecorder()
	Handler(agg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for degraded", rec.Code)
	}
}
