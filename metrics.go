package main

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "udhaar_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "udhaar_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "udhaar_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)
	scoreComputations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "udhaar_score_computations_total",
			Help: "Number of credit score computations performed.",
		},
	)
	loansCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "udhaar_loans_created_total",
			Help: "Loan applications created, by initial status.",
		},
		[]string{"status"},
	)
)

// metricsMiddleware records request counts and latencies. Uses the route
// template (FullPath) rather than the raw URL to keep label cardinality
// bounded.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsInFlight.Inc()
		start := time.Now()
		c.Next()
		httpRequestsInFlight.Dec()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
