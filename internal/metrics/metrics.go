// Package metrics defines the Prometheus instruments of the library core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query metrics
var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenelib_queries_total",
			Help: "Total number of library queries",
		},
		[]string{"kind"}, // "tree", "items"
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scenelib_query_duration_seconds",
			Help:    "Library query duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"kind"},
	)
)

// Source metrics
var (
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenelib_source_fetch_total",
			Help: "Total number of pack index fetches",
		},
		[]string{"source", "status"}, // status: "ok", "error"
	)
)

// Cache and persistence metrics
var (
	VocabularyRebuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scenelib_vocabulary_rebuilds_total",
			Help: "Total number of full tag vocabulary scans",
		},
	)

	PersistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenelib_persist_failures_total",
			Help: "Total number of failed flag store writes",
		},
		[]string{"key"},
	)
)

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// ObserveQuery records one query of the given kind started at start.
func ObserveQuery(kind string, start time.Time) {
	QueriesTotal.WithLabelValues(kind).Inc()
	QueryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveFetch records the outcome of a source fetch.
func ObserveFetch(source string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SourceFetchTotal.WithLabelValues(source, status).Inc()
}
