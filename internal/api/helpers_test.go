// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/refresh"
)

// mockDashboard implements DashboardService.
type mockDashboard struct {
	mu         sync.Mutex
	snap       *models.DashboardSnapshot
	status     refresh.Status
	dash       config.DashboardConfig
	refreshErr error
	refreshes  int
}

func (m *mockDashboard) Snapshot() *models.DashboardSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *mockDashboard) Ready() bool { return m.Snapshot() != nil }

func (m *mockDashboard) Status() refresh.Status { return m.status }

func (m *mockDashboard) DashboardConfig() config.DashboardConfig { return m.dash }

func (m *mockDashboard) TriggerRefresh(ctx context.Context) (*models.DashboardSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	m.refreshes++
	snap := testSnapshot("snap-refreshed")
	m.snap = snap
	return snap, nil
}

// mockHistory implements SnapshotHistory.
type mockHistory struct {
	summaries []models.SnapshotSummary
	err       error
	lastLimit int
}

func (m *mockHistory) History(ctx context.Context, limit int) ([]models.SnapshotSummary, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.summaries) {
		return m.summaries[:limit], nil
	}
	return m.summaries, nil
}

// mockStore implements RecordStore and refresh.RecordSource.
type mockStore struct {
	mu        sync.Mutex
	records   models.RecordSet
	inserted  []models.RecordSet
	insertErr error
	loadErr   error
	pingErr   error
	loads     atomic.Int32
}

func (m *mockStore) InsertRecordSet(ctx context.Context, rs *models.RecordSet) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	m.inserted = append(m.inserted, *rs)
	m.records.Revenue = append(m.records.Revenue, rs.Revenue...)
	m.records.Acquisition = append(m.records.Acquisition, rs.Acquisition...)
	m.records.Engagement = append(m.records.Engagement, rs.Engagement...)
	m.records.Retention = append(m.records.Retention, rs.Retention...)
	m.records.Funnels = append(m.records.Funnels, rs.Funnels...)
	return map[string]int{
		string(models.KindRevenue):     len(rs.Revenue),
		string(models.KindAcquisition): len(rs.Acquisition),
		string(models.KindEngagement):  len(rs.Engagement),
		string(models.KindRetention):   len(rs.Retention),
		string(models.KindFunnel):      len(rs.Funnels),
	}, nil
}

func (m *mockStore) Ping(ctx context.Context) error { return m.pingErr }

func (m *mockStore) LoadRecords(ctx context.Context) (models.RecordSet, error) {
	m.loads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return models.RecordSet{}, m.loadErr
	}
	return m.records, nil
}

var errTest = errors.New("test error")

func testSnapshot(id string) *models.DashboardSnapshot {
	return &models.DashboardSnapshot{
		ID:          id,
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Overview: models.Overview{
			TotalRevenue: 1500,
			TotalUsers:   120,
			MRR:          900,
			ChurnRate:    4.5,
		},
		ConversionMetrics: models.ConversionMetrics{AverageOverallConversion: 12.5},
		KPITargets: []models.KPIMetric{
			{ID: "mrr", Value: 900, Target: 1000, Trend: models.TrendUp},
		},
		DataQuality: models.DataQuality{SkippedRecords: map[string]int{}, Warnings: []string{}},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			SeriesCacheSize: 16,
			SeriesCacheTTL:  time.Minute,
		},
		Refresh: config.RefreshConfig{
			ManualInterval: 10 * time.Second,
		},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"http://localhost:3000"},
			RateLimitDisabled: true,
			MaxBodyBytes:      1 << 20,
		},
		Dashboard: config.DashboardConfig{
			Period:              "daily",
			MovingAverageWindow: 3,
		},
	}
}

// testEnv bundles a handler, its mocks and a router for one test.
type testEnv struct {
	handler   *Handler
	dashboard *mockDashboard
	history   *mockHistory
	store     *mockStore
	router    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	env := &testEnv{
		dashboard: &mockDashboard{snap: testSnapshot("snap-1"), dash: cfg.Dashboard},
		history:   &mockHistory{},
		store:     &mockStore{},
	}
	env.handler = NewHandler(Dependencies{
		Config:    cfg,
		Dashboard: env.dashboard,
		History:   env.history,
		Records:   env.store,
		Reader:    env.store,
	})
	env.router = NewRouter(env.handler, NewChiMiddleware(ChiMiddlewareConfigFrom(cfg.Security))).SetupChi()
	return env
}

// do sends a request through the router. body may be nil, a string or a
// value to encode as JSON.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, e.router, method, path, body)
}

func serve(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// testEnvelope mirrors APIResponse with the payload left undecoded.
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) testEnvelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected success response, got %s", rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to decode data %q: %v", string(env.Data), err)
	}
	return env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatalf("expected error response, got success: %s", rec.Body.String())
	}
	if env.Error == nil || env.Error.Code != want {
		t.Fatalf("expected error code %s, got %+v", want, env.Error)
	}
}

// withURLParam attaches a chi route parameter to a request served without
// the router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
