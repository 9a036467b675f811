// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for:
// - Record store queries (DuckDB)
// - Dashboard composition and refresh cycles
// - Snapshot persistence (BadgerDB)
// - API endpoint latency and throughput
// - WebSocket connections
// - Circuit breaker state

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meridian_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Engine Metrics
	ComposeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meridian_compose_duration_seconds",
			Help:    "Duration of dashboard composition in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecordsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_records_loaded_total",
			Help: "Total number of records loaded from the record store",
		},
		[]string{"kind"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_records_skipped_total",
			Help: "Total number of malformed records skipped at the boundary",
		},
		[]string{"kind", "reason"},
	)

	ComposeWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meridian_compose_warnings_total",
			Help: "Total number of data-quality warnings raised during composition",
		},
	)

	DashboardKPIValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meridian_dashboard_kpi_value",
			Help: "Latest value of each dashboard KPI",
		},
		[]string{"kpi"},
	)

	// Refresh Metrics
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meridian_refresh_duration_seconds",
			Help:    "Duration of refresh cycles (fetch, compose, publish) in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_refresh_total",
			Help: "Total number of refresh cycles",
		},
		[]string{"trigger", "result"}, // trigger: "interval", "manual", "startup"
	)

	RefreshFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_refresh_failures_total",
			Help: "Total number of failed refresh cycles",
		},
		[]string{"stage"}, // stage: "fetch", "breaker_open", "timeout", "persist"
	)

	RefreshLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meridian_refresh_last_success_timestamp",
			Help: "Unix timestamp of the last successful refresh",
		},
	)

	SnapshotGeneratedAt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meridian_snapshot_generated_timestamp",
			Help: "Unix timestamp of the snapshot currently served",
		},
	)

	// Snapshot Persistence Metrics
	SnapshotPersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meridian_snapshot_persist_duration_seconds",
			Help:    "Duration of snapshot writes to BadgerDB in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	SnapshotPersistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meridian_snapshot_persist_errors_total",
			Help: "Total number of failed snapshot writes",
		},
	)

	SnapshotHistoryEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meridian_snapshot_history_entries",
			Help: "Current number of snapshots kept in history",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meridian_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meridian_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Series Cache Metrics
	SeriesCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_series_cache_requests_total",
			Help: "Ad-hoc series cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	SeriesCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meridian_series_cache_entries",
			Help: "Number of cached ad-hoc series responses",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meridian_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meridian_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meridian_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meridian_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meridian_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecordsLoaded adds per-kind loaded record counts.
func RecordRecordsLoaded(counts map[string]int) {
	for kind, n := range counts {
		RecordsLoaded.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordSkipped counts one skipped record.
func RecordSkipped(kind, reason string, n int) {
	if n <= 0 {
		return
	}
	RecordsSkipped.WithLabelValues(kind, reason).Add(float64(n))
}

// RecordCompose records one composition.
func RecordCompose(duration time.Duration, warnings int) {
	ComposeDuration.Observe(duration.Seconds())
	if warnings > 0 {
		ComposeWarnings.Add(float64(warnings))
	}
}

// RecordRefresh records a refresh cycle. A nil error marks the cycle successful.
func RecordRefresh(trigger string, duration time.Duration, err error) {
	RefreshDuration.Observe(duration.Seconds())
	if err != nil {
		RefreshTotal.WithLabelValues(trigger, "failure").Inc()
		RefreshFailures.WithLabelValues(RefreshFailureStage(err)).Inc()
		return
	}
	RefreshTotal.WithLabelValues(trigger, "success").Inc()
	RefreshLastSuccess.Set(float64(time.Now().Unix()))
}

// Stage classifies a refresh error for the failures counter.
type Stage interface {
	RefreshStage() string
}

// RefreshFailureStage returns the stage label for a refresh error. Errors that
// carry a stage report it; deadline errors map to "timeout"; everything else
// is attributed to "fetch".
func RefreshFailureStage(err error) string {
	var staged Stage
	if errors.As(err, &staged) {
		return staged.RefreshStage()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "fetch"
}

// RecordSnapshotPersist records a snapshot write to the snapshot store.
func RecordSnapshotPersist(duration time.Duration, err error) {
	SnapshotPersistDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotPersistErrors.Inc()
	}
}

// SetKPIValues publishes the latest KPI values.
func SetKPIValues(values map[string]float64) {
	for kpi, v := range values {
		DashboardKPIValue.WithLabelValues(kpi).Set(v)
	}
}

// RecordSeriesCache records a series cache lookup and the resulting cache size.
func RecordSeriesCache(hit bool, size int) {
	if hit {
		SeriesCacheRequests.WithLabelValues("hit").Inc()
	} else {
		SeriesCacheRequests.WithLabelValues("miss").Inc()
	}
	SeriesCacheEntries.Set(float64(size))
}
