package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chapel",
			Subsystem: "media_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chapel",
			Subsystem: "media_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chapel",
			Subsystem: "media_api",
			Name:      "uploads_total",
			Help:      "Total file uploads",
		},
		[]string{"kind", "status"},
	)

	// Upload bytes counter
	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chapel",
			Subsystem: "media_api",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"kind"},
	)

	// Remote store operations counter
	RemoteOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chapel",
			Subsystem: "media_api",
			Name:      "remote_operations_total",
			Help:      "Total remote store operations",
		},
		[]string{"operation", "status"},
	)

	// Remote store operation duration
	RemoteOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chapel",
			Subsystem: "media_api",
			Name:      "remote_operation_duration_seconds",
			Help:      "Remote store operation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 30, 120, 600},
		},
		[]string{"operation"},
	)

	// Orphaned remote assets. An orphan outlives its referencing record
	// after a failed persist or a failed remote delete.
	OrphanAssetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chapel",
			Subsystem: "media_api",
			Name:      "orphan_assets_total",
			Help:      "Remote assets left behind with no referencing record",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a file upload
func RecordUpload(kind, status string, bytes int64) {
	UploadsTotal.WithLabelValues(kind, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(kind).Add(float64(bytes))
	}
}

// RecordRemoteOperation records a remote store call
func RecordRemoteOperation(operation, status string, durationSec float64) {
	RemoteOperationsTotal.WithLabelValues(operation, status).Inc()
	RemoteOperationDuration.WithLabelValues(operation).Observe(durationSec)
}
