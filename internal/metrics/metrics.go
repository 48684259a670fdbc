// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookmarks_http_request_duration_seconds",
		Help:    "Time from request receipt to response.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})

	UnauthorizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarks_unauthorized_requests_total",
		Help: "Requests rejected by the bearer credential check.",
	})

	ValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_validation_failures_total",
		Help: "Rejected request bodies by reason.",
	}, []string{"reason"})

	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_store_errors_total",
		Help: "Store faults surfaced to clients, by operation.",
	}, []string{"op"})

	BookmarksTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookmarks_total",
		Help: "Total number of bookmarks in the database.",
	})
)
