package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion service

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_api_calls_total",
			Help: "Total number of logical Sportradar API calls by final status",
		},
		[]string{"sport", "endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridiron_api_call_duration_seconds",
			Help:    "Duration of logical API calls in seconds, retries included",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"sport", "endpoint"},
	)

	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_api_retries_total",
			Help: "Total number of retries after upstream 429 responses",
		},
		[]string{"sport", "endpoint"},
	)

	RateLimitWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridiron_rate_limit_wait_seconds",
			Help:    "Time spent waiting for a local rate limiter slot",
			Buckets: []float64{.001, .01, .1, .5, 1, 2, 5},
		},
		[]string{"sport"},
	)

	// Quota metrics
	QuotaUsed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridiron_quota_used",
			Help: "API calls logged in the current accounting window",
		},
		[]string{"sport"},
	)

	QuotaRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridiron_quota_remaining",
			Help: "API calls remaining in the current accounting window",
		},
		[]string{"sport"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridiron_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridiron_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridiron_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridiron_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gridiron_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridiron_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "sport", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridiron_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"type", "sport"},
	)

	SyncSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_sync_skipped_total",
			Help: "Total number of records skipped during syncs",
		},
		[]string{"type", "sport"},
	)

	GamesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_games_ingested_total",
			Help: "Total number of games upserted by syncs",
		},
		[]string{"sport"},
	)

	TeamsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_teams_ingested_total",
			Help: "Total number of teams upserted by syncs",
		},
		[]string{"sport"},
	)

	LinesImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_lines_imported_total",
			Help: "Total number of games given closing lines",
		},
		[]string{"sport"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridiron_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridiron_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridiron_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordAPICall records a logical API call metric
func RecordAPICall(sport, endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(sport, endpoint, status).Inc()
	APICallDuration.WithLabelValues(sport, endpoint).Observe(duration)
}

// RecordAPIRetry records a retry after an upstream 429
func RecordAPIRetry(sport, endpoint string) {
	APIRetriesTotal.WithLabelValues(sport, endpoint).Inc()
}

// RecordRateLimitWait records time spent waiting on the local limiter
func RecordRateLimitWait(sport string, duration float64) {
	RateLimitWaitDuration.WithLabelValues(sport).Observe(duration)
}

// UpdateQuota updates the quota gauges for a sport
func UpdateQuota(sport string, used, remaining int) {
	QuotaUsed.WithLabelValues(sport).Set(float64(used))
	QuotaRemaining.WithLabelValues(sport).Set(float64(remaining))
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordSync records a sync operation
func RecordSync(syncType, sport, status string, skipped int, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, sport, status).Inc()
	SyncDuration.WithLabelValues(syncType, sport).Observe(duration)
	SyncSkippedTotal.WithLabelValues(syncType, sport).Add(float64(skipped))

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// RecordGamesIngested counts games upserted for sport
func RecordGamesIngested(sport string, n int) {
	GamesIngested.WithLabelValues(sport).Add(float64(n))
}

// RecordTeamsIngested counts teams upserted for sport
func RecordTeamsIngested(sport string, n int) {
	TeamsIngested.WithLabelValues(sport).Add(float64(n))
}

// RecordLinesImported counts games whose closing lines were saved
func RecordLinesImported(sport string, n int) {
	LinesImported.WithLabelValues(sport).Add(float64(n))
}
