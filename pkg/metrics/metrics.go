// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdmissionsTotal tracks admission decisions for user input.
	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_admissions_total",
			Help: "Admission decisions for user input",
		},
		[]string{"kind", "result"},
	)

	// RequestDuration tracks end-to-end assistant request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_request_duration_seconds",
			Help:    "Assistant request duration in seconds",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"kind", "protocol", "status"},
	)

	// RequestsTotal tracks assistant requests by outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_requests_total",
			Help: "Total assistant requests",
		},
		[]string{"kind", "protocol", "status"},
	)

	// HTTPResponsesTotal tracks responses from the remote endpoint.
	HTTPResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_http_responses_total",
			Help: "HTTP responses received from the remote endpoint",
		},
		[]string{"method", "status"},
	)

	// RunPollAttempts tracks how many polls a thread run needed.
	RunPollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_run_poll_attempts",
			Help:    "Polls needed before a thread run finished",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 30},
		},
	)

	// ThreadsCreated tracks remote threads created.
	ThreadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_threads_created_total",
			Help: "Remote conversation threads created",
		},
	)

	// RateWindowCount tracks admitted messages in the current period.
	RateWindowCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_rate_window_count",
			Help: "Messages admitted in the current rate period",
		},
	)

	// OpsRequestsTotal tracks requests to the local ops endpoint.
	OpsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_ops_requests_total",
			Help: "Requests served by the ops endpoint",
		},
		[]string{"path", "status"},
	)

	// ImageBytes tracks the size of encoded image payloads.
	ImageBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_image_payload_bytes",
			Help:    "Size of the encoded image payload",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 8),
		},
	)
)

// RecordAdmission records one admission decision.
func RecordAdmission(kind, result string) {
	AdmissionsTotal.WithLabelValues(kind, result).Inc()
}

// RecordRequest records metrics for a completed assistant request.
func RecordRequest(kind, protocol, status string, duration float64) {
	RequestDuration.WithLabelValues(kind, protocol, status).Observe(duration)
	RequestsTotal.WithLabelValues(kind, protocol, status).Inc()
}

// RecordHTTPResponse records one response from the remote endpoint.
func RecordHTTPResponse(method, status string) {
	HTTPResponsesTotal.WithLabelValues(method, status).Inc()
}

// SetRateWindow publishes the current period count.
func SetRateWindow(count int) {
	RateWindowCount.Set(float64(count))
}

// RecordOpsRequest records one ops endpoint request.
func RecordOpsRequest(path, status string) {
	OpsRequestsTotal.WithLabelValues(path, status).Inc()
}
