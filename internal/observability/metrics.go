package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the extraction service
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestSize      *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Extraction metrics
	extractionsTotal   *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	strategyDuration   *prometheus.HistogramVec
	strategyTotal      *prometheus.CounterVec
	extractedChars     *prometheus.HistogramVec

	// Cache metrics
	cacheLookupsTotal *prometheus.CounterVec

	// System metrics
	systemUptime prometheus.Gauge
}

// NewMetrics creates the metrics on their own registry so tests can build
// as many instances as they like
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfextract_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfextract_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfextract_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pdfextract_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),

		extractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfextract_extractions_total",
				Help: "Total number of extraction requests by accepted method and status",
			},
			[]string{"method", "status"},
		),
		extractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfextract_extraction_duration_seconds",
				Help:    "End-to-end extraction latency in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"method"},
		),
		strategyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfextract_strategy_duration_seconds",
				Help:    "Latency of a single extraction strategy attempt in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"strategy"},
		),
		strategyTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfextract_strategy_attempts_total",
				Help: "Total number of strategy attempts by outcome",
			},
			[]string{"strategy", "outcome"},
		),
		extractedChars: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdfextract_extracted_characters",
				Help:    "Characters of recognized text per strategy attempt",
				Buckets: []float64{0, 10, 40, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"strategy"},
		),

		cacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfextract_cache_lookups_total",
				Help: "Total number of result cache lookups",
			},
			[]string{"result"},
		),

		systemUptime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pdfextract_system_uptime_seconds",
				Help: "System uptime in seconds",
			},
		),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestSize,
		m.httpRequestsInFlight,
		m.extractionsTotal,
		m.extractionDuration,
		m.strategyDuration,
		m.strategyTotal,
		m.extractedChars,
		m.cacheLookupsTotal,
		m.systemUptime,
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MetricsMiddleware returns a Fiber middleware that collects HTTP metrics
func (m *Metrics) MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.httpRequestsInFlight.Inc()
		defer m.httpRequestsInFlight.Dec()

		requestSize := len(c.Body())
		path := normalizePath(c.Path())
		method := c.Method()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := statusClass(c.Response().StatusCode())

		m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		m.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))

		return err
	}
}

// RecordExtraction records a finished extraction request. method is empty
// when the cascade failed.
func (m *Metrics) RecordExtraction(method string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if method == "" {
		method = "none"
	}
	m.extractionsTotal.WithLabelValues(method, status).Inc()
	m.extractionDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordStrategy records one strategy attempt inside the cascade
func (m *Metrics) RecordStrategy(strategy string, length int, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.strategyTotal.WithLabelValues(strategy, outcome).Inc()
	m.strategyDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if err == nil {
		m.extractedChars.WithLabelValues(strategy).Observe(float64(length))
	}
}

// RecordCacheLookup records a result cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(result).Inc()
}

// UpdateUptime updates the system uptime metric
func (m *Metrics) UpdateUptime(startTime time.Time) {
	m.systemUptime.Set(time.Since(startTime).Seconds())
}

// Handler returns a Fiber handler that exposes Prometheus metrics
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// normalizePath keeps label cardinality bounded
func normalizePath(path string) string {
	if len(path) > 50 {
		return "long_path"
	}
	return path
}

// statusClass returns the HTTP status class (2xx, 3xx, 4xx, 5xx)
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
