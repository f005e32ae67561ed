// Package metrics exposes the service's Prometheus instrumentation.
//
// Metrics are registered on the default registry at package init via
// promauto, so importing packages can record without any wiring. Handler
// serves the exposition endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsLoaded is the number of records in the published dataset.
	RecordsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "csvserve_records_loaded",
		Help: "Number of records in the published dataset.",
	})

	// SourceBytes is the size of the source file as consumed by the load.
	SourceBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "csvserve_source_bytes",
		Help: "Bytes read from the source file during the load.",
	})

	// LoadDuration is the wall time of the startup load pass.
	LoadDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "csvserve_load_duration_seconds",
		Help: "Wall time of the startup load pass in seconds.",
	})

	// LoadsTotal counts load outcomes by status (success or failure). The
	// store loads once per process, so each series carries at most one
	// increment; the counter shape keeps alerting rules uniform across
	// services.
	LoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csvserve_loads_total",
		Help: "Dataset load outcomes by status.",
	}, []string{"status"})

	// HTTPRequests counts requests by route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csvserve_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"path", "status"})

	// HTTPDuration tracks request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "csvserve_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
