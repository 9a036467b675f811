// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/meridian/internal/middleware"
	ws "github.com/tomtom215/meridian/internal/websocket"
)

func TestHealthLive(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.dashboard.snap = nil

	rec := env.do(t, http.MethodGet, "/api/v1/health/live", nil)
	expectStatus(t, rec, http.StatusOK)

	var data map[string]interface{}
	decodeData(t, rec, &data)
	if data["alive"] != true {
		t.Errorf("expected alive=true, got %v", data["alive"])
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		noSnapshot bool
		pingErr    error
		wantStatus int
	}{
		{"ready", false, nil, http.StatusOK},
		{"no snapshot", true, nil, http.StatusServiceUnavailable},
		{"database down", false, errTest, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			if tt.noSnapshot {
				env.dashboard.snap = nil
			}
			env.store.pingErr = tt.pingErr
			env.dashboard.status.Refreshes = 3

			rec := env.do(t, http.MethodGet, "/api/v1/health/ready", nil)
			expectStatus(t, rec, tt.wantStatus)

			if tt.wantStatus == http.StatusOK {
				var status ReadinessStatus
				decodeData(t, rec, &status)
				if !status.Ready || status.SnapshotID != "snap-1" {
					t.Errorf("expected ready with snap-1, got %+v", status)
				}
				if status.Refresh.Refreshes != 3 {
					t.Errorf("expected refresh status passed through, got %+v", status.Refresh)
				}
				return
			}

			envelope := decodeEnvelope(t, rec)
			if envelope.Error == nil || envelope.Error.Code != ErrCodeServiceUnavailable {
				t.Fatalf("expected %s, got %+v", ErrCodeServiceUnavailable, envelope.Error)
			}
			details, ok := envelope.Error.Details.(map[string]interface{})
			if !ok || details["ready"] != false {
				t.Errorf("expected readiness details with ready=false, got %v", envelope.Error.Details)
			}
		})
	}
}

func TestHealthReady_WebSocketClients(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.handler.wsHub = ws.NewHub()

	rec := env.do(t, http.MethodGet, "/api/v1/health/ready", nil)
	expectStatus(t, rec, http.StatusOK)

	var status ReadinessStatus
	decodeData(t, rec, &status)
	if status.WebSocketClients != 0 {
		t.Errorf("expected 0 websocket clients, got %d", status.WebSocketClients)
	}
}

func TestHealthLatency(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	tracker := middleware.NewLatencyTracker(100, time.Minute)
	dash := &mockDashboard{snap: testSnapshot("snap-1"), dash: cfg.Dashboard}
	store := &mockStore{}
	handler := NewHandler(Dependencies{
		Config:    cfg,
		Dashboard: dash,
		Records:   store,
		Reader:    store,
		Latency:   tracker,
	})
	router := NewRouter(handler, NewChiMiddleware(ChiMiddlewareConfigFrom(cfg.Security))).SetupChi()

	for i := 0; i < 3; i++ {
		expectStatus(t, serve(t, router, http.MethodGet, "/api/v1/dashboard", nil), http.StatusOK)
	}
	expectStatus(t, serve(t, router, http.MethodGet, "/api/v1/health/live", nil), http.StatusOK)

	rec := serve(t, router, http.MethodGet, "/api/v1/health/latency", nil)
	expectStatus(t, rec, http.StatusOK)

	var stats []middleware.EndpointLatency
	envelope := decodeData(t, rec, &stats)

	if len(stats) < 2 {
		t.Fatalf("expected at least 2 endpoints, got %+v", stats)
	}
	if !strings.HasPrefix(stats[0].Endpoint, "GET /api/v1/dashboard") || stats[0].RequestCount != 3 {
		t.Errorf("expected dashboard endpoint first with 3 requests, got %+v", stats[0])
	}
	if envelope.Meta.Count == nil || *envelope.Meta.Count != len(stats) {
		t.Errorf("expected meta count %d, got %v", len(stats), envelope.Meta.Count)
	}
}

func TestHealthLatency_WithoutTracker(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/health/latency", nil)
	expectStatus(t, rec, http.StatusOK)

	var stats []middleware.EndpointLatency
	decodeData(t, rec, &stats)
	if len(stats) != 0 {
		t.Errorf("expected no stats without a tracker, got %d", len(stats))
	}
}
