package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestRecordBufferIncrementsLabeledCounter(t *testing.T) {
	before := getCounterValue(t, buffersTotal.WithLabelValues("source", "push"))
	RecordBuffer("source", "push")
	after := getCounterValue(t, buffersTotal.WithLabelValues("source", "push"))
	assert.Equal(t, before+1, after)
}

func TestRecordPipelineReadyIncrements(t *testing.T) {
	before := getCounterValue(t, pipelineReadyTotal)
	RecordPipelineReady()
	after := getCounterValue(t, pipelineReadyTotal)
	assert.Equal(t, before+1, after)
}

func TestRecordNegotiationFailureIncrementsLabeledCounter(t *testing.T) {
	before := getCounterValue(t, negotiationFailuresTotal.WithLabelValues("demuxer"))
	RecordNegotiationFailure("demuxer")
	after := getCounterValue(t, negotiationFailuresTotal.WithLabelValues("demuxer"))
	assert.Equal(t, before+1, after)
}

func TestRecordStateTransitionIncrementsLabeledCounter(t *testing.T) {
	before := getCounterValue(t, stateTransitionsTotal.WithLabelValues("ready", "playing"))
	RecordStateTransition("ready", "playing")
	after := getCounterValue(t, stateTransitionsTotal.WithLabelValues("ready", "playing"))
	assert.Equal(t, before+1, after)
}

func TestObservePluginSelectionDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { ObservePluginSelection(0.002) })
}

func TestHandlerServesPrometheusFormat(t *testing.T) {
	RecordPipelineReady()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "histreamer_pipeline_ready_total")
}
