// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package config provides centralized configuration management for Meridian.

Configuration is loaded with Koanf v2 from three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/meridian/config.yaml
 3. Environment variables, mapped explicitly through envMappings

Unmapped environment variables are ignored. Comma-separated values are split for
list settings such as CORS_ORIGINS.

# Environment Variables

Database:
  - DUCKDB_PATH: Record store path, ":memory:" for an ephemeral store (default: /data/meridian.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
  - SEED_MOCK_DATA: Seed deterministic demo records into an empty store (default: false)

Refresh:
  - REFRESH_INTERVAL: Dashboard recomposition interval (default: 30s)
  - REFRESH_TIMEOUT: Upper bound for one refresh cycle (default: 20s)
  - REFRESH_MANUAL_INTERVAL: Minimum spacing of manual refreshes (default: 10s)

Dashboard:
  - DASHBOARD_PERIOD: daily, weekly or monthly (default: daily)
  - MOVING_AVERAGE_WINDOW: Revenue smoothing window in buckets (default: 7)
  - LTV_FALLBACK_MONTHS: Lifetime months assumed when churn is zero (default: 24)
  - MRR_OVERRIDE, CHURN_RATE_OVERRIDE, TOTAL_USERS_OVERRIDE: Externally supplied overview values

KPI targets are lists of objects and are only read from the config file:

	dashboard:
	  kpi_targets:
	    - id: mrr
	      category: revenue
	      target: 50000
	      unit: currency

Snapshots:
  - SNAPSHOTS_ENABLED, SNAPSHOTS_PATH, SNAPSHOTS_IN_MEMORY, SNAPSHOTS_HISTORY_SIZE

Server and Security:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080), HTTP_TIMEOUT
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
*/
package config
