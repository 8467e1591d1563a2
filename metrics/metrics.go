package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EngineOutcomes counts occupancy/session/request operations by the outcome tag they returned.
	EngineOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demeter_engine_outcomes_total",
			Help: "Engine operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	EngineErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demeter_engine_errors_total",
			Help: "Engine operations that failed on storage or locking",
		},
		[]string{"operation"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "demeter_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)

	OccupiedDesks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "demeter_occupied_desks",
			Help: "Desks with an open session at the last snapshot",
		},
	)

	QueuedRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "demeter_queued_requests",
			Help: "Requests waiting in each kitchen state at the last snapshot",
		},
		[]string{"state"},
	)

	KDSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "demeter_kds_clients",
			Help: "Connected kitchen display clients",
		},
	)
)

func ObserveOutcome(operation, outcome string) {
	EngineOutcomes.WithLabelValues(operation, outcome).Inc()
}

func ObserveError(operation string) {
	EngineErrors.WithLabelValues(operation).Inc()
}
