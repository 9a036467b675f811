// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package middleware provides HTTP middleware shared by the API router.

  - RequestID: X-Request-ID propagation into the request and logging contexts
  - PrometheusMetrics: request count, duration and in-flight gauge, labelled by chi route pattern
  - LatencyTracker: sliding-window per-route latency percentiles and slow request logging

All middleware uses the func(http.Handler) http.Handler shape so it can be
passed straight to chi's Use and With. Route-aware middleware reads the chi
route pattern after the wrapped handler returns, when routing is complete.
*/
package middleware
