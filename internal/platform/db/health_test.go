package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPoolStats_Fields(t *testing.T) {
	stats := &PoolStats{
		Dialect:         Postgres,
		TotalConns:      10,
		IdleConns:       5,
		AcquiredConns:   5,
		MaxConns:        20,
		AcquireCount:    100,
		AcquireDuration: "1.5s",
		Healthy:         true,
	}

	b, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["dialect"] != "postgres" {
		t.Errorf("expected dialect postgres, got %v", m["dialect"])
	}
	if m["total_conns"] != float64(10) {
		t.Errorf("expected total_conns 10, got %v", m["total_conns"])
	}
	if m["acquire_duration"] != "1.5s" {
		t.Errorf("expected acquire_duration 1.5s, got %v", m["acquire_duration"])
	}
}

func TestHealthHandler_Healthy(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := HealthHandler(PingFunc(func(context.Context) error { return nil }), nil)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
	if _, ok := body["pool"]; ok {
		t.Error("expected no pool stats without a stats func")
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	stats := func() *PoolStats { return &PoolStats{Dialect: Postgres, Healthy: true} }
	h := HealthHandler(PingFunc(func(context.Context) error { return errors.New("connection refused") }), stats)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	var body struct {
		Status string     `json:"status"`
		Error  string     `json:"error"`
		Pool   *PoolStats `json:"pool"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Status != "unhealthy" || body.Error != "connection refused" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Pool == nil || body.Pool.Healthy {
		t.Error("expected pool reported unhealthy")
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw     string
		dialect Dialect
		dsn     string
		wantErr bool
	}{
		{"postgres://u:p@localhost/clinic", Postgres, "postgres://u:p@localhost/clinic", false},
		{"postgresql://localhost/clinic", Postgres, "postgresql://localhost/clinic", false},
		{"sqlite://clinic.db", SQLite, "clinic.db", false},
		{"file:clinic.db?mode=rwc", SQLite, "file:clinic.db?mode=rwc", false},
		{":memory:", SQLite, ":memory:", false},
		{"sqlite://", "", "", true},
		{"mysql://localhost/clinic", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		d, dsn, err := ParseURL(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseURL(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if d != tt.dialect || dsn != tt.dsn {
			t.Errorf("ParseURL(%q) = (%q, %q), want (%q, %q)", tt.raw, d, dsn, tt.dialect, tt.dsn)
		}
	}
}

func TestFormatTime_RoundTrip(t *testing.T) {
	s := "2025-08-15T10:00:00.123456Z"
	ts, err := ParseTime(s)
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if got := FormatTime(ts); got != s {
		t.Errorf("FormatTime = %q, want %q", got, s)
	}
}
