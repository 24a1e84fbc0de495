package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream API metrics
var (
	// FetchesTotal tracks requests against the INMET API
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inmet_fetches_total",
			Help: "Total number of INMET API requests",
		},
		[]string{"endpoint", "status"},
	)

	// FetchDuration tracks the duration of INMET API requests
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inmet_fetch_duration_seconds",
			Help:    "Duration of INMET API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// LastFetchSuccess records when an endpoint last answered successfully
	LastFetchSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inmet_last_fetch_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful INMET API request",
		},
		[]string{"endpoint"},
	)

	// NormalizeFailures counts payloads rejected by the normalizer. A nonzero
	// rate indicates an upstream API contract change, not a transient fault.
	NormalizeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inmet_normalize_failures_total",
			Help: "Total number of INMET payloads that failed normalization",
		},
		[]string{"payload"},
	)
)

// Database metrics
var (
	// DBQueriesTotal tracks the total number of database queries
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries executed",
		},
		[]string{"query_type", "table", "status"},
	)

	// DBQueryDuration tracks the duration of database queries
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type", "table"},
	)

	// DBConnectionsOpen tracks the number of open database connections
	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of established connections both in use and idle",
		},
	)

	// DBConnectionsInUse tracks the number of connections currently in use
	DBConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of connections currently in use",
		},
	)

	// DBConnectionsIdle tracks the number of idle connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle connections",
		},
	)
)

// Application metrics
var (
	// AppInfo provides static information about the application
	AppInfo = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inmet_app_info",
			Help: "Application information (always 1)",
		},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inmet_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppInfo.Set(1)
	AppStartTime.SetToCurrentTime()
}

// RecordFetch records an INMET API request
func RecordFetch(endpoint string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	FetchesTotal.WithLabelValues(endpoint, status).Inc()
	FetchDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err == nil {
		LastFetchSuccess.WithLabelValues(endpoint).SetToCurrentTime()
	}
}

// RecordNormalizeFailure records a payload the normalizer could not parse
func RecordNormalizeFailure(payload string) {
	NormalizeFailures.WithLabelValues(payload).Inc()
}

// RecordDBQuery records a database query execution
func RecordDBQuery(queryType, table string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBQueriesTotal.WithLabelValues(queryType, table, status).Inc()
	DBQueryDuration.WithLabelValues(queryType, table).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(open, inUse, idle int) {
	DBConnectionsOpen.Set(float64(open))
	DBConnectionsInUse.Set(float64(inUse))
	DBConnectionsIdle.Set(float64(idle))
}
