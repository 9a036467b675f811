// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry with promauto and are
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Engine:
  - meridian_compose_duration_seconds: Composition latency (histogram)
  - meridian_records_loaded_total: Records read from the store (counter), labels: kind
  - meridian_records_skipped_total: Malformed records dropped at the boundary (counter), labels: kind, reason
  - meridian_compose_warnings_total: Data-quality warnings (counter)
  - meridian_dashboard_kpi_value: Latest KPI values (gauge), labels: kpi

Refresh:
  - meridian_refresh_duration_seconds: Refresh cycle latency (histogram)
  - meridian_refresh_total: Refresh cycles (counter), labels: trigger, result
  - meridian_refresh_failures_total: Failed cycles (counter), labels: stage
  - meridian_refresh_last_success_timestamp, meridian_snapshot_generated_timestamp (gauges)

Storage:
  - meridian_duckdb_query_duration_seconds, meridian_duckdb_query_errors_total
  - meridian_snapshot_persist_duration_seconds, meridian_snapshot_persist_errors_total
  - meridian_snapshot_history_entries

HTTP and WebSocket:
  - meridian_api_requests_total, meridian_api_request_duration_seconds
  - meridian_api_active_requests, meridian_api_rate_limit_hits_total
  - meridian_websocket_connections, meridian_websocket_messages_sent_total, meridian_websocket_errors_total

Circuit Breaker:
  - meridian_circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - meridian_circuit_breaker_requests_total: labels name, result (success, failure, rejected)
  - meridian_circuit_breaker_consecutive_failures
  - meridian_circuit_breaker_state_transitions_total

# Example Queries

Refresh failure rate:

	rate(meridian_refresh_total{result="failure"}[5m])

Skipped records by reason:

	sum by (kind, reason) (increase(meridian_records_skipped_total[1h]))
*/
package metrics
