package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafind_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediafind_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediafind_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafind_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediafind_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediafind_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"outcome"}, // "commit" or "rollback"
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediafind_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Scanner metrics
var (
	ScannerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediafind_scanner_runs_total",
			Help: "Total number of sidecar scan runs",
		},
	)

	ScannerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediafind_scanner_last_run_timestamp",
			Help: "Timestamp of the last sidecar scan",
		},
	)

	ScannerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediafind_scanner_last_run_duration_seconds",
			Help: "Duration of the last sidecar scan in seconds",
		},
	)

	ScannerSidecarsSeen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediafind_scanner_sidecars_seen_total",
			Help: "Total number of sidecar files discovered by the scanner",
		},
	)

	ScannerSidecarsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediafind_scanner_sidecars_updated_total",
			Help: "Total number of sidecars whose metadata was (re)indexed",
		},
	)

	ScannerSidecarsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediafind_scanner_sidecars_skipped_total",
			Help: "Total number of sidecars skipped due to unchanged fingerprint",
		},
	)

	ScannerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafind_scanner_errors_total",
			Help: "Total number of per-file scanner errors",
		},
		[]string{"kind"}, // "io", "parse", "store"
	)

	ScannerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediafind_scanner_running",
			Help: "Whether a sidecar scan is currently running (1 = running, 0 = idle)",
		},
	)
)

// Derivative cache metrics
var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafind_cache_hits_total",
			Help: "Total number of derivative cache hits",
		},
		[]string{"variant"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafind_cache_misses_total",
			Help: "Total number of derivative cache misses",
		},
		[]string{"variant"},
	)

	CacheBusts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafind_cache_busts_total",
			Help: "Total number of forced derivative regenerations",
		},
		[]string{"variant"},
	)

	CacheGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediafind_cache_generation_duration_seconds",
			Help:    "Derivative generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"variant"},
	)

	CacheGenerationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafind_cache_generation_errors_total",
			Help: "Total number of failed derivative generations",
		},
		[]string{"variant"},
	)
)

// Path guard metrics
var (
	PathTraversalRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediafind_path_traversal_rejections_total",
			Help: "Total number of requests rejected by the path guard",
		},
	)
)
