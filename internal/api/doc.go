// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package api provides the HTTP REST API layer for Meridian.

It serves the published dashboard snapshot, exposes the analytics engine's
operations over JSON, accepts record ingest and pushes snapshot updates to
WebSocket clients.

Key Components:

  - Router: chi route configuration and middleware stack
  - Handler: request handlers, split by endpoint group
  - ResponseWriter: the {success, data, error, meta} envelope
  - ChiMiddleware: go-chi/cors, go-chi/httprate and body size limits

API Categories:

1. Health (/api/v1/health/):
  - live, ready (ready once a snapshot exists and the store answers)
  - latency: per-route p50/p95/p99 over the recent request window

2. Dashboard (/api/v1/dashboard/):
  - GET / returns the full snapshot
  - GET /{section}: overview, revenue, users, conversion, kpis, quality
  - GET /history?limit=N lists persisted snapshots
  - POST /refresh recomposes now (429 when throttled)

3. Analytics (/api/v1/analytics/):
  - GET /series?kind=&period=&window= buckets, smooths and classifies a series
  - POST /percentile, /correlation, /funnel, /retention run engine
    operations on posted data

4. Records (/api/v1/records/{kind}):
  - POST a batch of revenue, acquisition, engagement, retention or funnel records

5. WebSocket (/api/v1/ws) and Prometheus (/metrics)

Usage Example:

	handler := api.NewHandler(api.Dependencies{
	    Config:    cfg,
	    Dashboard: refreshManager,
	    History:   snapshotStore,
	    Records:   db,
	    Reader:    breakerReader,
	    Hub:       wsHub,
	    Latency:   middleware.NewLatencyTracker(cfg.Server.LatencyWindow, cfg.Server.SlowRequestThreshold),
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))
	server := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}

Error responses carry a machine-readable code (BAD_REQUEST, NOT_FOUND,
VALIDATION_ERROR, TOO_MANY_REQUESTS, SERVICE_UNAVAILABLE, ...) and the
request ID from the X-Request-ID header.
*/
package api
