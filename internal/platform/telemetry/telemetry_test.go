package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
)

func newTestServer(p *Provider) *echo.Echo {
	e := echo.New()
	e.Use(p.MetricsMiddleware())
	e.POST("/api/v1/bills", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]int{"id": 1})
	})
	e.POST("/api/v1/patients", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]int{"id": 1})
	})
	e.GET("/api/v1/bills/:id/invoice", func(c echo.Context) error {
		if c.Param("id") == "404" {
			return echo.NewHTTPError(http.StatusNotFound, "bill 404: not found")
		}
		return c.String(http.StatusOK, "invoice")
	})
	e.GET("/metrics", p.PrometheusHandler())
	return e
}

func do(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNewProvider_Defaults(t *testing.T) {
	p := NewProvider(Config{}, nil)
	if p.cfg.ServiceName != "clinic" {
		t.Fatalf("expected default ServiceName 'clinic', got %q", p.cfg.ServiceName)
	}
	if !p.cfg.metricsOn() {
		t.Fatal("metrics should be on by default")
	}
}

func TestMetricsMiddleware_RecordsByRouteAndStatus(t *testing.T) {
	p := NewProvider(Config{}, nil)
	e := newTestServer(p)

	do(e, http.MethodPost, "/api/v1/bills")
	do(e, http.MethodPost, "/api/v1/bills")
	do(e, http.MethodGet, "/api/v1/bills/404/invoice")

	if got := p.RequestCount("POST", "/api/v1/bills", "201"); got != 2 {
		t.Errorf("expected 2 create requests, got %d", got)
	}
	if got := p.RequestCount("GET", "/api/v1/bills/:id/invoice", "404"); got != 1 {
		t.Errorf("expected the 404 to be labelled with the HTTPError code, got %d", got)
	}
}

func TestMetricsMiddleware_CountsSuccessfulOperations(t *testing.T) {
	p := NewProvider(Config{}, nil)
	e := newTestServer(p)

	do(e, http.MethodPost, "/api/v1/bills")
	do(e, http.MethodPost, "/api/v1/patients")
	do(e, http.MethodGet, "/api/v1/bills/404/invoice")
	do(e, http.MethodGet, "/api/v1/bills/3/invoice")
	do(e, http.MethodGet, "/api/v1/bills/3/invoice?format=document")

	tests := map[string]int64{
		"bill_create":             1,
		"patient_register":        1,
		"invoice_render_text":     1,
		"invoice_render_document": 1,
		"report_export":           0,
	}
	for op, want := range tests {
		if got := p.OperationCount(op); got != want {
			t.Errorf("%s: expected %d, got %d", op, want, got)
		}
	}
}

func TestMetricsMiddleware_Disabled(t *testing.T) {
	p := NewProvider(Config{MetricsEnabled: BoolPtr(false)}, nil)
	e := newTestServer(p)

	do(e, http.MethodPost, "/api/v1/bills")
	if got := p.RequestCount("POST", "/api/v1/bills", "201"); got != 0 {
		t.Errorf("expected nothing recorded, got %d", got)
	}
	if got := p.OperationCount("bill_create"); got != 0 {
		t.Errorf("expected no operations counted, got %d", got)
	}
}

func TestPrometheusHandler_Format(t *testing.T) {
	stats := func() *db.PoolStats { return &db.PoolStats{AcquiredConns: 2, IdleConns: 3, MaxConns: 10} }
	p := NewProvider(Config{ServiceName: "clinic-test"}, stats)
	e := newTestServer(p)

	do(e, http.MethodPost, "/api/v1/bills")
	rec := do(e, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()

	for _, want := range []string{
		"# TYPE http_server_request_duration_seconds histogram",
		`http_server_request_duration_seconds_count{method="POST",route="/api/v1/bills",status_code="201"} 1`,
		`le="+Inf"`,
		"# TYPE http_server_active_requests gauge",
		`billing_operations_total{service="clinic-test",operation="bill_create"} 1`,
		"db_pool_acquired_connections 2",
		"db_pool_idle_connections 3",
		"db_pool_max_connections 10",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q\n%s", want, body)
		}
	}
}

func TestPrometheusHandler_NoPoolForSQLite(t *testing.T) {
	p := NewProvider(Config{}, func() *db.PoolStats { return nil })
	rec := do(newTestServer(p), http.MethodGet, "/metrics")
	if strings.Contains(rec.Body.String(), "db_pool_") {
		t.Error("pool gauges should be omitted when stats are unavailable")
	}
}

func TestHistogram_Buckets(t *testing.T) {
	h := newHistogram([]float64{1, 5, 10})
	for _, v := range []float64{0.5, 1, 3, 7, 42} {
		h.Observe(v)
	}
	cum := h.cumulativeBuckets()
	want := []int64{2, 3, 4}
	for i := range want {
		if cum[i] != want[i] {
			t.Errorf("bucket %d: expected %d, got %d", i, want[i], cum[i])
		}
	}
	if h.Count() != 5 {
		t.Errorf("expected count 5, got %d", h.Count())
	}
	if h.Sum() != 53.5 {
		t.Errorf("expected sum 53.5, got %g", h.Sum())
	}
}

func TestBillingOperation(t *testing.T) {
	tests := []struct {
		method, route, format, want string
	}{
		{"POST", "/api/v1/bills", "", "bill_create"},
		{"GET", "/api/v1/bills", "", ""},
		{"POST", "/api/v1/patients", "", "patient_register"},
		{"GET", "/api/v1/bills/:id/invoice", "", "invoice_render_text"},
		{"GET", "/api/v1/bills/:id/invoice", "document", "invoice_render_document"},
		{"GET", "/api/v1/reports/exports/:id", "", "report_export"},
		{"GET", "/health", "", ""},
	}
	for _, tt := range tests {
		if got := billingOperation(tt.method, tt.route, tt.format); got != tt.want {
			t.Errorf("billingOperation(%s %s %q) = %q, want %q", tt.method, tt.route, tt.format, got, tt.want)
		}
	}
}

func TestMetrics_ConcurrentSafe(t *testing.T) {
	p := NewProvider(Config{}, nil)
	e := newTestServer(p)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			do(e, http.MethodPost, "/api/v1/bills")
		}()
	}
	wg.Wait()

	if got := p.OperationCount("bill_create"); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
	if got := p.RequestCount("POST", "/api/v1/bills", "201"); got != 50 {
		t.Errorf("expected 50 observations, got %d", got)
	}
}
