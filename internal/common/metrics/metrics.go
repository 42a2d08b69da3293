// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_registry_operations_total",
			Help: "Registry operations by operation and outcome code",
		},
		[]string{"operation", "outcome"},
	)

	RegistryOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activities_registry_operation_duration_seconds",
			Help:    "Duration of registry operations in seconds",
			Buckets: []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"operation"},
	)

	RosterSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "activities_roster_size",
			Help: "Current number of participants per activity",
		},
		[]string{"activity"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_events_published_total",
			Help: "Enrollment events delivered per sink and status",
		},
		[]string{"sink", "status"},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activities_events_dropped_total",
			Help: "Enrollment events dropped because the dispatch queue was full",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_http_requests_total",
			Help: "HTTP requests by route pattern, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activities_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)
