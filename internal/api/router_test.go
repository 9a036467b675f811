// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/meridian/internal/middleware"
)

func TestRouter_Fallbacks(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"unknown route", http.MethodGet, "/api/v1/nope", http.StatusNotFound, ErrCodeNotFound},
		{"wrong method on analytics", http.MethodGet, "/api/v1/analytics/percentile", http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed},
		{"wrong method on ingest", http.MethodGet, "/api/v1/records/revenue", http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := env.do(t, tt.method, tt.path, nil)
			expectStatus(t, rec, tt.wantStatus)
			expectErrorCode(t, rec, tt.wantCode)
		})
	}
}

func TestRouter_RequestID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("echoes upstream id", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-abc-123")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if got := rec.Header().Get(middleware.RequestIDHeader); got != "req-abc-123" {
			t.Errorf("expected echoed request id, got %q", got)
		}
		envelope := decodeEnvelope(t, rec)
		if envelope.Meta == nil || envelope.Meta.RequestID != "req-abc-123" {
			t.Errorf("expected request id in meta, got %+v", envelope.Meta)
		}
	})

	t.Run("generates id", func(t *testing.T) {
		t.Parallel()
		rec := env.do(t, http.MethodGet, "/api/v1/nope", nil)
		id := rec.Header().Get(middleware.RequestIDHeader)
		if id == "" {
			t.Fatal("expected a generated request id")
		}
		envelope := decodeEnvelope(t, rec)
		if envelope.Error == nil || envelope.Error.RequestID != id {
			t.Errorf("expected error to carry request id %q, got %+v", id, envelope.Error)
		}
	})
}

func TestRouter_SecurityHeadersOnAPIRoutes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/health/live", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("expected JSON content type, got %q", got)
	}
}

func TestRouter_Compression(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("expected gzip encoding, got %q", got)
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	expectStatus(t, env.do(t, http.MethodGet, "/api/v1/dashboard", nil), http.StatusOK)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "meridian_api_requests_total") {
		t.Error("expected meridian_api_requests_total in metrics output")
	}
}

func TestNewRouter_DefaultMiddleware(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandler(Dependencies{}), nil)
	if router.chiMiddleware == nil {
		t.Fatal("expected default middleware")
	}

	rec := serve(t, router.SetupChi(), http.MethodGet, "/api/v1/dashboard", nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	expectErrorCode(t, rec, ErrCodeServiceUnavailable)
}
