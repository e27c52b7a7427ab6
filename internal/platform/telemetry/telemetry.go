// Package telemetry records HTTP server metrics and billing operation counts
// and serves them in the Prometheus text exposition format.
package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
)

// Config holds telemetry settings.
type Config struct {
	ServiceName    string
	MetricsEnabled *bool // nil = enabled
}

func (c *Config) metricsOn() bool {
	if c.MetricsEnabled == nil {
		return true
	}
	return *c.MetricsEnabled
}

// BoolPtr is a helper to create a *bool for Config fields.
func BoolPtr(b bool) *bool { return &b }

// defaultDurationBuckets are request duration bucket boundaries in seconds.
var defaultDurationBuckets = []float64{
	0.005, 0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0,
}

// histogram is a thread-safe histogram. Bucket counts are non-cumulative in
// storage; cumulative counts are computed at export time.
type histogram struct {
	boundaries   []float64
	bucketCounts []int64
	count        int64
	sum          uint64 // math.Float64bits
	mu           sync.Mutex
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

// Observe records a single value.
func (h *histogram) Observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			return
		}
	}
}

// Count returns the total number of observations.
func (h *histogram) Count() int64 { return atomic.LoadInt64(&h.count) }

// Sum returns the total of all observations.
func (h *histogram) Sum() float64 { return math.Float64frombits(atomic.LoadUint64(&h.sum)) }

func (h *histogram) cumulativeBuckets() []int64 {
	h.mu.Lock()
	cum := make([]int64, len(h.bucketCounts))
	var running int64
	for i, c := range h.bucketCounts {
		running += c
		cum[i] = running
	}
	h.mu.Unlock()
	return cum
}

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(addr, old, next) {
			return
		}
	}
}

// LabelsKey builds the key a request histogram is stored under.
func LabelsKey(method, route, statusCode string) string {
	return method + "|" + route + "|" + statusCode
}

// Provider owns all metric state for one server.
type Provider struct {
	cfg   Config
	stats func() *db.PoolStats

	mu         sync.RWMutex
	durations  map[string]*histogram
	operations map[string]*int64

	active int64
}

// NewProvider creates a Provider. stats may be nil; when set, its connection
// pool figures are exported as gauges.
func NewProvider(cfg Config, stats func() *db.PoolStats) *Provider {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "clinic"
	}
	return &Provider{
		cfg:        cfg,
		stats:      stats,
		durations:  make(map[string]*histogram),
		operations: make(map[string]*int64),
	}
}

func (p *Provider) duration(key string) *histogram {
	p.mu.RLock()
	h, ok := p.durations[key]
	p.mu.RUnlock()
	if ok {
		return h
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok = p.durations[key]; !ok {
		h = newHistogram(defaultDurationBuckets)
		p.durations[key] = h
	}
	return h
}

// CountOperation increments the counter for a named operation.
func (p *Provider) CountOperation(op string) {
	p.mu.RLock()
	c, ok := p.operations[op]
	p.mu.RUnlock()
	if !ok {
		p.mu.Lock()
		if c, ok = p.operations[op]; !ok {
			c = new(int64)
			p.operations[op] = c
		}
		p.mu.Unlock()
	}
	atomic.AddInt64(c, 1)
}

// OperationCount returns the current value of an operation counter.
func (p *Provider) OperationCount(op string) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c, ok := p.operations[op]; ok {
		return atomic.LoadInt64(c)
	}
	return 0
}

// RequestCount returns how many requests were observed for a label set.
func (p *Provider) RequestCount(method, route, status string) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if h, ok := p.durations[LabelsKey(method, route, status)]; ok {
		return h.Count()
	}
	return 0
}

// MetricsMiddleware records request duration by method, route and status,
// and counts successful write and render operations.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.cfg.metricsOn() {
				return next(c)
			}
			atomic.AddInt64(&p.active, 1)
			defer atomic.AddInt64(&p.active, -1)
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			req := c.Request()
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}
			p.duration(LabelsKey(req.Method, route, strconv.Itoa(status))).
				Observe(time.Since(start).Seconds())

			if status < 400 {
				if op := billingOperation(req.Method, route, c.QueryParam("format")); op != "" {
					p.CountOperation(op)
				}
			}
			return err
		}
	}
}

// billingOperation names the operation a matched route performs, or "" for
// routes that are not counted.
func billingOperation(method, route, format string) string {
	switch {
	case method == http.MethodPost && strings.HasSuffix(route, "/bills"):
		return "bill_create"
	case method == http.MethodPost && strings.HasSuffix(route, "/patients"):
		return "patient_register"
	case method == http.MethodGet && strings.HasSuffix(route, "/bills/:id/invoice"):
		if format == "" {
			format = "text"
		}
		return "invoice_render_" + format
	case method == http.MethodGet && strings.HasSuffix(route, "/reports/exports/:id"):
		return "report_export"
	}
	return ""
}

// PrometheusHandler serves all metrics in Prometheus text format.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		p.mu.RLock()
		durKeys := sortedKeys(p.durations)
		durations := make([]*histogram, len(durKeys))
		for i, k := range durKeys {
			durations[i] = p.durations[k]
		}
		opKeys := sortedKeys(p.operations)
		ops := make([]int64, len(opKeys))
		for i, k := range opKeys {
			ops[i] = atomic.LoadInt64(p.operations[k])
		}
		p.mu.RUnlock()

		name := "http_server_request_duration_seconds"
		fmt.Fprintf(&b, "# HELP %s Duration of HTTP requests in seconds.\n", name)
		fmt.Fprintf(&b, "# TYPE %s histogram\n", name)
		for i, key := range durKeys {
			parts := strings.SplitN(key, "|", 3)
			if len(parts) != 3 {
				continue
			}
			labels := fmt.Sprintf("method=%q,route=%q,status_code=%q", parts[0], parts[1], parts[2])
			writeHistogram(&b, name, labels, durations[i])
		}
		b.WriteByte('\n')

		writeGauge(&b, "http_server_active_requests", "Number of active HTTP requests.", atomic.LoadInt64(&p.active))

		b.WriteString("# HELP billing_operations_total Completed clinic operations by kind.\n")
		b.WriteString("# TYPE billing_operations_total counter\n")
		for i, op := range opKeys {
			fmt.Fprintf(&b, "billing_operations_total{service=%q,operation=%q} %d\n", p.cfg.ServiceName, op, ops[i])
		}
		b.WriteByte('\n')

		if p.stats != nil {
			if ps := p.stats(); ps != nil {
				writeGauge(&b, "db_pool_acquired_connections", "Connections currently in use.", int64(ps.AcquiredConns))
				writeGauge(&b, "db_pool_idle_connections", "Idle pool connections.", int64(ps.IdleConns))
				writeGauge(&b, "db_pool_max_connections", "Configured pool size.", int64(ps.MaxConns))
			}
		}

		return c.String(http.StatusOK, b.String())
	}
}

func writeGauge(b *strings.Builder, name, help string, v int64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %d\n\n", name, v)
}

func writeHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum := h.cumulativeBuckets()
	total := h.Count()
	for i, boundary := range h.boundaries {
		fmt.Fprintf(b, "%s_bucket{%s,le=\"%g\"} %d\n", name, labels, boundary, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, labels, total)
	fmt.Fprintf(b, "%s_sum{%s} %g\n", name, labels, h.Sum())
	fmt.Fprintf(b, "%s_count{%s} %d\n", name, labels, total)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
