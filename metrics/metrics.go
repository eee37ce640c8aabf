package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// UpstreamRequestsTotal counts calls to the report/auth backend by operation and outcome.
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spotnsort",
		Name:      "upstream_requests_total",
		Help:      "Total number of calls to the report backend.",
	}, []string{"op", "outcome"})

	UpstreamDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "spotnsort",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of calls to the report backend.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spotnsort",
		Name:      "submissions_total",
		Help:      "Citizen report submissions by outcome.",
	}, []string{"outcome"})

	GeocodeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spotnsort",
		Name:      "geocode_requests_total",
		Help:      "Forward-geocoding lookups by outcome.",
	}, []string{"outcome"})

	// StaleSnapshotsTotal counts report list responses dropped because a newer one was already applied.
	StaleSnapshotsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "spotnsort",
		Name:      "stale_snapshots_total",
		Help:      "Report list responses discarded as stale.",
	})

	LiveClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "spotnsort",
		Name:      "live_clients",
		Help:      "Connected live-feed websocket clients.",
	})
)

// Register registers gateway metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			UpstreamRequestsTotal,
			UpstreamDurationSeconds,
			SubmissionsTotal,
			GeocodeRequestsTotal,
			StaleSnapshotsTotal,
			LiveClients,
		)
	})
}

// ObserveUpstream records one backend call
func ObserveUpstream(op string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(op, outcome).Inc()
	UpstreamDurationSeconds.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
