// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"context"
	"time"

	"github.com/tomtom215/meridian/internal/cache"
	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/middleware"
	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/refresh"
	ws "github.com/tomtom215/meridian/internal/websocket"
)

// DashboardService serves the published snapshot and manual refreshes.
// Implemented by *refresh.Manager.
type DashboardService interface {
	Snapshot() *models.DashboardSnapshot
	Ready() bool
	Status() refresh.Status
	DashboardConfig() config.DashboardConfig
	TriggerRefresh(ctx context.Context) (*models.DashboardSnapshot, error)
}

// SnapshotHistory lists persisted snapshots. Implemented by *snapshots.Store.
type SnapshotHistory interface {
	History(ctx context.Context, limit int) ([]models.SnapshotSummary, error)
}

// RecordStore accepts ingested records. Implemented by *database.DB.
type RecordStore interface {
	InsertRecordSet(ctx context.Context, rs *models.RecordSet) (map[string]int, error)
	Ping(ctx context.Context) error
}

// Dependencies groups everything the handlers need. History, Hub and
// Latency are optional.
type Dependencies struct {
	Config    *config.Config
	Dashboard DashboardService
	History   SnapshotHistory
	Records   RecordStore
	Reader    refresh.RecordSource
	Hub       *ws.Hub
	Latency   *middleware.LatencyTracker
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_health.go: liveness, readiness and latency
//   - handlers_dashboard.go: snapshot sections, history and manual refresh
//   - handlers_analytics.go: ad-hoc series and engine operations
//   - handlers_records.go: record ingest
//   - handlers_websocket.go: snapshot push
type Handler struct {
	config    *config.Config
	dashboard DashboardService
	history   SnapshotHistory
	records   RecordStore
	reader    refresh.RecordSource
	wsHub     *ws.Hub
	latency   *middleware.LatencyTracker
	series    *cache.LRU[*SeriesResponse]
	startTime time.Time
}

// NewHandler creates the API handler. The series cache is sized from
// the server configuration.
func NewHandler(deps Dependencies) *Handler {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	return &Handler{
		config:    cfg,
		dashboard: deps.Dashboard,
		history:   deps.History,
		records:   deps.Records,
		reader:    deps.Reader,
		wsHub:     deps.Hub,
		latency:   deps.Latency,
		series:    cache.NewLRU[*SeriesResponse](cfg.Server.SeriesCacheSize, cfg.Server.SeriesCacheTTL),
		startTime: time.Now(),
	}
}

// ClearCache invalidates every cached series response.
//
// Called after each successful ingest so the next series request sees the
// new records.
func (h *Handler) ClearCache() {
	h.series.Purge()
	logging.Debug().Msg("Series cache cleared")
}
