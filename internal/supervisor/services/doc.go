// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package services provides suture.Service wrappers for Meridian components.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx context.Context) error pattern and names itself via fmt.Stringer
for supervisor logs.

# Available Services

	RefreshService        refresh.Manager (Start/Stop)          messaging layer
	WebSocketHubService   websocket.Hub (RunWithContext)        messaging layer
	MaintenanceService    periodic DuckDB CHECKPOINT            data layer
	HTTPServerService     *http.Server (ListenAndServe)         api layer

Returning an error from Serve makes the supervisor restart the service with
backoff; returning ctx.Err() after cancellation is a clean stop.
*/
package services
