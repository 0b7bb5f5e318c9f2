// Package middleware contains HTTP middleware for the API layer.
package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	matchesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_created_total",
			Help: "Total number of match rows created",
		},
	)

	matchesRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_removed_total",
			Help: "Total number of match rows removed by drift expiry or consent revocation",
		},
	)

	candidateScansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "candidate_scans_total",
			Help: "Total number of candidate scan passes executed",
		},
	)
)

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordMatchesCreated bumps the created-matches counter.
func RecordMatchesCreated(n int) {
	if n > 0 {
		matchesCreatedTotal.Add(float64(n))
	}
}

// RecordMatchesRemoved bumps the removed-matches counter.
func RecordMatchesRemoved(n int) {
	if n > 0 {
		matchesRemovedTotal.Add(float64(n))
	}
}

// RecordCandidateScan counts one candidate scan pass.
func RecordCandidateScan() {
	candidateScansTotal.Inc()
}
