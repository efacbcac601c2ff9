// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	// CheckCount counts candidate checks by algorithm and outcome
	CheckCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlap_checks_total",
			Help: "Total number of overlap checks",
		},
		[]string{"algorithm", "status"},
	)

	// CheckDuration measures how long a check takes end to end
	CheckDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "overlap_check_duration_seconds",
			Help:    "Overlap check duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 9),
		},
		[]string{"algorithm"},
	)

	// Uniqueness records the distribution of uniqueness scores
	Uniqueness = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overlap_uniqueness_percent",
			Help:    "Uniqueness score of checked candidates",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// CacheLookups counts result cache hits and misses
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlap_cache_lookups_total",
			Help: "Result cache lookups by result",
		},
		[]string{"result"},
	)

	// DocumentsIngested counts corpus documents stored, by source
	DocumentsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlap_documents_ingested_total",
			Help: "Corpus documents ingested",
		},
		[]string{"source"},
	)
)

// InitPrometheus registers all collectors with the default registry
func InitPrometheus() {
	prometheus.MustRegister(
		RequestCount,
		RequestDuration,
		CheckCount,
		CheckDuration,
		Uniqueness,
		CacheLookups,
		DocumentsIngested,
	)
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
