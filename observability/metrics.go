// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for a noodles-core server (arena mutation rates, dispatch
// latency, catch-up batch size).
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	arenaMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noodles_arena_mutations_total",
			Help: "Total create/update/delete operations against a component arena",
		},
		[]string{"kind", "op"}, // op: create, update, delete
	)

	dispatchInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noodles_dispatch_invocations_total",
			Help: "Total method invocations handled by the dispatcher",
		},
		[]string{"status"}, // status: ok, exception
	)

	dispatchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "noodles_dispatch_duration_seconds",
			Help:    "Method invocation latency, resolution through reply",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"status"},
	)

	catchUpBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "noodles_catchup_batch_size",
			Help:    "Number of messages sent to a newly introduced client's catch-up batch",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000},
		},
	)

	connectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "noodles_connected_clients",
			Help: "Number of clients currently registered on the broadcast hub",
		},
	)
)

// RecordArenaMutation records one create/update/delete against kind's arena.
func RecordArenaMutation(kind, op string) {
	arenaMutationsTotal.WithLabelValues(kind, op).Inc()
}

// RecordDispatch records one completed Dispatch.Invoke call. status is
// "ok" or "exception"; durationSeconds is the Invoke call's wall time.
// Shaped to plug directly into a dispatch middleware's After hook.
func RecordDispatch(status string, durationSeconds float64) {
	dispatchInvocationsTotal.WithLabelValues(status).Inc()
	dispatchDurationSeconds.WithLabelValues(status).Observe(durationSeconds)
}

// RecordCatchUpBatch records the size of one client's initial catch-up batch.
func RecordCatchUpBatch(messageCount int) {
	catchUpBatchSize.Observe(float64(messageCount))
}

// SetConnectedClients reports the hub's current client count.
func SetConnectedClients(n int) {
	connectedClients.Set(float64(n))
}

// ObserveDispatch matches dispatch.NewMetricsMiddleware's Observe callback
// signature, letting cmd/noodles-server wire it in with no adapter glue.
func ObserveDispatch(methodName string, took time.Duration, failed bool) {
	status := "ok"
	if failed {
		status = "exception"
	}
	RecordDispatch(status, took.Seconds())
}
