// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package supervisor provides process supervision for Meridian using suture v4.

Every long-running component runs under a three-layer supervisor tree so a
crash in one layer restarts that layer only:

	meridian
	├── data-layer
	│   └── database-maintenance   (periodic DuckDB CHECKPOINT)
	├── messaging-layer
	│   ├── refresh-manager        (scheduled snapshot recomposition)
	│   └── websocket-hub          (snapshot push to dashboards)
	└── api-layer
	    └── http-server

A failing refresh manager keeps the HTTP API up and serving the last
published snapshot; a stuck checkpoint never blocks the refresh loop.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFor(cfg))
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewMaintenanceService(db, cfg.Database.CheckpointInterval, logger))
	tree.AddMessagingService(services.NewRefreshService(manager))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)

# Failure Handling

Restart behavior follows suture's failure counter: each failure increments
it, the counter decays over FailureDecay seconds, and past FailureThreshold
the supervisor waits FailureBackoff before the next restart. Zero values in
TreeConfig take suture's defaults (5 failures, 30s decay, 15s backoff).

ShutdownTimeout bounds how long each service gets to return after
cancellation. TreeConfigFor sets it slightly above the HTTP server's own
shutdown timeout so in-flight requests can drain first. Services that miss
the deadline show up in UnstoppedServiceReport.

DuckDB itself is not supervised: it is an embedded library owned by the
database package, and only its maintenance loop runs as a service.
*/
package supervisor
