package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP server's Prometheus collectors.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
	Rejected prometheus.Counter
	Warnings *prometheus.CounterVec
}

// NewMetrics registers the server collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sfnet",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sfnet",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration by route.",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route"},
		),
		InFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sfnet",
				Name:      "http_requests_in_flight",
				Help:      "Requests currently being served.",
			},
		),
		Rejected: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sfnet",
				Name:      "http_requests_rejected_total",
				Help:      "Requests rejected by the concurrency limit.",
			},
		),
		Warnings: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sfnet",
				Name:      "query_warnings_total",
				Help:      "Advisory warnings returned with query results, by code.",
			},
			[]string{"code"},
		),
	}
}
