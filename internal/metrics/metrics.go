package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "domainlease",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domainlease",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Marketplace metrics

	LeasesCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domainlease",
		Name:      "leases_created_total",
		Help:      "Total leases created, by lease type.",
	}, []string{"lease_type"})

	LeasesClosedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domainlease",
		Name:      "leases_closed_total",
		Help:      "Total leases closed, by terminal status.",
	}, []string{"status"})

	TokenBindingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domainlease",
		Name:      "token_bindings_total",
		Help:      "Total lease token bind/unbind attempts, by operation and outcome.",
	}, []string{"operation", "outcome"})

	UnbindRetryQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "domainlease",
		Name:      "unbind_retry_queue_depth",
		Help:      "Listings with an unbind retry pending.",
	})

	// Sweep metrics

	SweepCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "domainlease",
		Name:      "sweep_cycle_duration_seconds",
		Help:      "Time taken for one expiry sweep cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	SweepProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domainlease",
		Name:      "sweep_processed_total",
		Help:      "Entities processed by the expiry sweep, by action.",
	}, []string{"action"})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		LeasesCreatedTotal,
		LeasesClosedTotal,
		TokenBindingsTotal,
		UnbindRetryQueueDepth,
		SweepCycleDuration,
		SweepProcessedTotal,
	)
}

// Handler exposes the prometheus registry for mounting on the API router.
func Handler() http.Handler {
	return promhttp.Handler()
}
