// Package metrics provides Prometheus metrics for the DriveSweep engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Remote client metrics
	remoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivesweep_remote_calls_total",
			Help: "Total number of remote storage API calls",
		},
		[]string{"op", "status"},
	)

	remoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drivesweep_remote_call_duration_seconds",
			Help:    "Remote storage API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Enumeration metrics
	itemsEnumeratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drivesweep_items_enumerated_total",
			Help: "Total number of items discovered during tree enumeration",
		},
	)

	enumerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drivesweep_enumeration_duration_seconds",
			Help:    "Tree enumeration duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	// Batch execution metrics
	batchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivesweep_batch_items_total",
			Help: "Total number of batch items processed, by outcome",
		},
		[]string{"outcome"},
	)

	batchBytesCopiedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drivesweep_batch_bytes_copied_total",
			Help: "Total bytes copied by batch executions",
		},
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drivesweep_batch_duration_seconds",
			Help:    "Batch execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)
)

// RecordRemoteCall records one remote API call.
func RecordRemoteCall(op string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	remoteCallsTotal.WithLabelValues(op, status).Inc()
	remoteCallDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordEnumeration records one completed tree enumeration.
func RecordEnumeration(items int, duration time.Duration) {
	itemsEnumeratedTotal.Add(float64(items))
	enumerationDuration.Observe(duration.Seconds())
}

// RecordBatchItem records one processed batch item.
// outcome is "success" or "skipped".
func RecordBatchItem(outcome string) {
	batchItemsTotal.WithLabelValues(outcome).Inc()
}

// RecordBatch records one completed batch execution.
func RecordBatch(bytesCopied int64, duration time.Duration) {
	batchBytesCopiedTotal.Add(float64(bytesCopied))
	batchDuration.Observe(duration.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a metrics HTTP server on addr. Blocks until the server exits.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
