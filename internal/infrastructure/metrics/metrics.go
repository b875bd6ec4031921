package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Streaming-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudflix",
			Subsystem: "streaming_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cloudflix",
			Subsystem: "streaming_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudflix",
			Subsystem: "streaming_api",
			Name:      "uploads_total",
			Help:      "Total video uploads",
		},
		[]string{"content_type", "status"},
	)

	// Streamed bytes counter
	StreamedBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudflix",
			Subsystem: "streaming_api",
			Name:      "streamed_bytes_total",
			Help:      "Total bytes served through range requests",
		},
		[]string{"backend"},
	)

	// Range request counter
	RangeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudflix",
			Subsystem: "streaming_api",
			Name:      "range_requests_total",
			Help:      "Total range requests by outcome",
		},
		[]string{"status"},
	)

	// Storage operations counter
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudflix",
			Subsystem: "streaming_api",
			Name:      "storage_operations_total",
			Help:      "Total storage backend operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// Storage operation duration
	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cloudflix",
			Subsystem: "streaming_api",
			Name:      "storage_duration_seconds",
			Help:      "Storage operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"backend", "operation"},
	)

	// Signed URL generation duration
	SignDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cloudflix",
			Subsystem: "streaming_api",
			Name:      "sign_duration_seconds",
			Help:      "Signed URL generation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1},
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a video upload
func RecordUpload(contentType, status string) {
	UploadsTotal.WithLabelValues(contentType, status).Inc()
}

// RecordStream records bytes served for a range request
func RecordStream(backend string, bytes int64) {
	StreamedBytesTotal.WithLabelValues(backend).Add(float64(bytes))
}

// RecordRangeRequest records a range request outcome
func RecordRangeRequest(status string) {
	RangeRequestsTotal.WithLabelValues(status).Inc()
}

// RecordStorageOperation records a storage backend operation
func RecordStorageOperation(backend, operation, status string, durationSec float64) {
	StorageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	StorageDuration.WithLabelValues(backend, operation).Observe(durationSec)
}

// RecordSign records signed URL generation
func RecordSign(durationSec float64) {
	SignDuration.Observe(durationSec)
}
