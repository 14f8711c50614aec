package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.CounterVec

	// Scan verification metrics
	ScanOutcomeCounter prometheus.CounterVec

	// Code minting metrics
	CodesMintedCounter    prometheus.CounterVec
	CodeCollisionsCounter prometheus.Counter

	// Bulk request metrics
	BulkRequestsCounter prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	// Use metric prefix from configuration
	prefix := cfg.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	// Scan verification metrics
	ScanOutcomeCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_scan_outcomes_total",
			Help: "Total number of verification scans by outcome",
		},
		[]string{"outcome"},
	)

	// Code minting metrics
	CodesMintedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_codes_minted_total",
			Help: "Total number of authentication codes minted",
		},
		[]string{"kind"},
	)

	CodeCollisionsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_code_collisions_total",
			Help: "Total number of code value collisions hit during minting",
		},
	)

	// Bulk request metrics
	BulkRequestsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_bulk_requests_total",
			Help: "Total number of bulk request transitions",
		},
		[]string{"status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordScanOutcome increments the counter for a verification outcome
func RecordScanOutcome(outcome string) {
	ScanOutcomeCounter.WithLabelValues(outcome).Inc()
}

// RecordMintedCodes adds minted codes to the counter for a code kind
func RecordMintedCodes(kind string, count int) {
	CodesMintedCounter.WithLabelValues(kind).Add(float64(count))
}

// RecordBulkRequest increments the counter for a bulk request transition
func RecordBulkRequest(status string) {
	BulkRequestsCounter.WithLabelValues(status).Inc()
}

// RecordAuthError increments the counter for an authentication error reason
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}
