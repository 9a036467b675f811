// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package main is the entry point for the Meridian server application.

Meridian turns the raw business records of a SaaS product (revenue events,
user acquisition, engagement sessions, cohort retention and conversion
funnels) into the KPI dashboard shown by an administration console. It keeps
a composed dashboard snapshot in memory, recomposes it on a fixed interval,
and serves it together with ad-hoc analytics over a JSON REST API and a
WebSocket feed.

# Application Architecture

The server runs its long-lived components under a Suture v4 supervisor tree:

	RootSupervisor ("meridian")
	├── DataSupervisor ("data-layer")
	│   └── Maintenance (periodic DuckDB CHECKPOINT)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (snapshot_updated broadcasts)
	│   └── Refresh Manager (fetch, compose, publish)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog, JSON or console output
 3. Database: DuckDB record store, optionally seeded with demo records
 4. Snapshot store: BadgerDB persistence of composed dashboards (optional)
 5. Refresh manager: circuit-breaker guarded record reads and snapshot composition
 6. HTTP server: chi router with CORS, rate limiting and Prometheus metrics

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
  - Environment variables (DUCKDB_PATH, REFRESH_INTERVAL, HTTP_PORT, ...)
  - Config file (config.yaml, or the file named by CONFIG_PATH)
  - Built-in defaults

Changes to the dashboard section of the config file are applied without a
restart and take effect on the next refresh.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:
  - Stops accepting new connections
  - Waits for in-flight requests to complete (SHUTDOWN_TIMEOUT)
  - Stops the refresh loop and closes WebSocket clients
  - Closes the snapshot store and database

# Example Usage

Development with demo data and an in-memory store:

	export DUCKDB_PATH=:memory:
	export SEED_MOCK_DATA=true
	export SNAPSHOTS_IN_MEMORY=true
	export LOG_FORMAT=console
	./meridian

Production:

	export DUCKDB_PATH=/data/meridian.duckdb
	export SNAPSHOTS_PATH=/data/snapshots
	export CORS_ORIGINS=https://admin.example.com
	./meridian
*/
package main
