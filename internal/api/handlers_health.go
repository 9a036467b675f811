// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/meridian/internal/middleware"
	"github.com/tomtom215/meridian/internal/refresh"
)

// healthPingTimeout bounds the database ping of the readiness probe.
const healthPingTimeout = 2 * time.Second

// ReadinessStatus is the body of the readiness probe.
type ReadinessStatus struct {
	Ready             bool           `json:"ready"`
	SnapshotAvailable bool           `json:"snapshot_available"`
	SnapshotID        string         `json:"snapshot_id,omitempty"`
	DatabaseConnected bool           `json:"database_connected"`
	BreakerState      string         `json:"breaker_state,omitempty"`
	WebSocketClients  int            `json:"websocket_clients"`
	Refresh           refresh.Status `json:"refresh"`
	Uptime            float64        `json:"uptime_seconds"`
}

// breakerStater is implemented by *refresh.CircuitBreakerReader.
type breakerStater interface {
	State() string
}

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests.
// Returns 200 once a snapshot has been published and the record store
// answers, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := ReadinessStatus{
		Uptime: time.Since(h.startTime).Seconds(),
	}

	if h.dashboard != nil {
		status.Refresh = h.dashboard.Status()
		if snap := h.dashboard.Snapshot(); snap != nil {
			status.SnapshotAvailable = true
			status.SnapshotID = snap.ID
		}
	}

	if h.records != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		status.DatabaseConnected = h.records.Ping(ctx) == nil
		cancel()
	}

	if bs, ok := h.reader.(breakerStater); ok {
		status.BreakerState = bs.State()
	}
	if h.wsHub != nil {
		status.WebSocketClients = h.wsHub.GetClientCount()
	}

	status.Ready = status.SnapshotAvailable && status.DatabaseConnected
	if !status.Ready {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Service is not ready", status)
		return
	}
	rw.Success(status)
}

// HealthLatency returns per-route latency percentiles over the recent
// request window.
func (h *Handler) HealthLatency(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stats := []middleware.EndpointLatency{}
	if h.latency != nil {
		stats = h.latency.Stats()
	}

	count := len(stats)
	rw.SuccessWithMeta(stats, &APIMeta{Count: &count})
}
