// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/meridian/internal/middleware"
)

// compressionLevel is the gzip level used for JSON responses.
const compressionLevel = 5

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil chiMw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // Global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).MethodNotAllowed()
	})

	// JSON endpoints share security headers, compression and latency tracking
	api := func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(compressionLevel, "application/json"))
		if router.handler.latency != nil {
			r.Use(router.handler.latency.Middleware)
		}
	}

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		api(r)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/latency", router.handler.HealthLatency)
	})

	// ========================
	// Dashboard Endpoints
	// ========================
	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		api(r)
		r.Get("/", router.handler.Dashboard)
		r.Get("/history", router.handler.DashboardHistory)
		r.Post("/refresh", router.handler.DashboardRefresh)
		r.Get("/{section}", router.handler.DashboardSection)
	})

	// ========================
	// Analytics Endpoints
	// ========================
	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAnalytics())
		r.Use(router.chiMiddleware.MaxBody())
		api(r)
		r.Get("/series", router.handler.Series)
		r.Post("/percentile", router.handler.Percentile)
		r.Post("/correlation", router.handler.Correlation)
		r.Post("/funnel", router.handler.Funnel)
		r.Post("/retention", router.handler.Retention)
	})

	// ========================
	// Record Ingest
	// ========================
	r.Route("/api/v1/records", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitWrite())
		r.Use(router.chiMiddleware.MaxBody())
		api(r)
		r.Post("/{kind}", router.handler.IngestRecords)
	})

	// WebSocket stays outside compression and latency tracking: the
	// connection is hijacked and lives for the whole session.
	r.With(router.chiMiddleware.RateLimitWebSocket()).Get("/api/v1/ws", router.handler.WebSocket)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
