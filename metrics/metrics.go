// Package metrics exposes Prometheus collectors for pipeline and state
// machine activity (spec.md §11.1), grounded on
// ManuGH-xg2g/internal/metrics/decision.go's promauto package-level
// CounterVec pattern.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	buffersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "histreamer_buffers_total",
		Help: "Total buffers pushed or pulled through a filter's ports.",
	}, []string{"filter", "direction"})

	pipelineReadyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "histreamer_pipeline_ready_total",
		Help: "Total number of times a pipeline aggregated a full Ready event.",
	})

	negotiationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "histreamer_negotiation_failures_total",
		Help: "Total capability negotiation failures by filter.",
	}, []string{"filter"})

	pluginSelectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "histreamer_plugin_selection_duration_seconds",
		Help:    "Time spent in Registry.Select choosing a plugin.",
		Buckets: prometheus.DefBuckets,
	})

	stateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "histreamer_state_transitions_total",
		Help: "Total StateMachine transitions by source and destination state.",
	}, []string{"from", "to"})
)

// RecordBuffer increments the buffer counter for filter in the given
// direction ("push" or "pull").
func RecordBuffer(filter, direction string) {
	buffersTotal.WithLabelValues(filter, direction).Inc()
}

// RecordPipelineReady increments the aggregated-Ready counter.
func RecordPipelineReady() {
	pipelineReadyTotal.Inc()
}

// RecordNegotiationFailure increments the negotiation-failure counter for
// filter.
func RecordNegotiationFailure(filter string) {
	negotiationFailuresTotal.WithLabelValues(filter).Inc()
}

// ObservePluginSelection records how long a Registry.Select call took.
func ObservePluginSelection(seconds float64) {
	pluginSelectionDuration.Observe(seconds)
}

// RecordStateTransition increments the transition counter for the from/to
// state pair.
func RecordStateTransition(from, to string) {
	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// Handler returns the Prometheus scrape endpoint. The core engine never
// opens a listener itself (spec.md non-goal: "does not ship a UI");
// mounting this handler on an http.Server is up to the embedder, and
// histreamer-cli does not mount it.
func Handler() http.Handler {
	return promhttp.Handler()
}
