// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/refresh"
)

// History limits
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// Dashboard sections addressable under /api/v1/dashboard/{section}
const (
	SectionOverview   = "overview"
	SectionRevenue    = "revenue"
	SectionUsers      = "users"
	SectionConversion = "conversion"
	SectionKPIs       = "kpis"
	SectionQuality    = "quality"
)

// snapshotSection returns the part of snap addressed by section.
func snapshotSection(snap *models.DashboardSnapshot, section string) (interface{}, bool) {
	switch section {
	case SectionOverview:
		return snap.Overview, true
	case SectionRevenue:
		return snap.RevenueMetrics, true
	case SectionUsers:
		return snap.UserMetrics, true
	case SectionConversion:
		return snap.ConversionMetrics, true
	case SectionKPIs:
		return snap.KPITargets, true
	case SectionQuality:
		return snap.DataQuality, true
	default:
		return nil, false
	}
}

func snapshotMeta(snap *models.DashboardSnapshot) *APIMeta {
	generated := snap.GeneratedAt
	return &APIMeta{
		SnapshotID:  snap.ID,
		GeneratedAt: &generated,
	}
}

// currentSnapshot returns the published snapshot or writes a 503.
func (h *Handler) currentSnapshot(rw *ResponseWriter) *models.DashboardSnapshot {
	var snap *models.DashboardSnapshot
	if h.dashboard != nil {
		snap = h.dashboard.Snapshot()
	}
	if snap == nil {
		rw.ServiceUnavailable("Dashboard snapshot is not available yet")
	}
	return snap
}

// Dashboard returns the full published snapshot.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}
	rw.SuccessWithMeta(snap, snapshotMeta(snap))
}

// DashboardSection returns one section of the published snapshot.
func (h *Handler) DashboardSection(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	section := chi.URLParam(r, "section")

	// Unknown sections 404 even before the first snapshot
	if _, ok := snapshotSection(&models.DashboardSnapshot{}, section); !ok {
		rw.NotFound("Unknown dashboard section: " + sanitizeLogValue(section))
		return
	}

	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}
	data, _ := snapshotSection(snap, section)
	rw.SuccessWithMeta(data, snapshotMeta(snap))
}

// DashboardHistory lists summaries of persisted snapshots, newest first.
func (h *Handler) DashboardHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, ok := getIntParam(r, "limit", defaultHistoryLimit)
	if !ok || limit < 1 || limit > maxHistoryLimit {
		rw.BadRequest("limit must be an integer between 1 and 500")
		return
	}

	if h.history == nil {
		rw.ServiceUnavailable("Snapshot persistence is disabled")
		return
	}

	summaries, err := h.history.History(r.Context(), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list snapshot history")
		rw.InternalError("Failed to list snapshot history")
		return
	}
	if summaries == nil {
		summaries = []models.SnapshotSummary{}
	}

	count := len(summaries)
	rw.SuccessWithMeta(summaries, &APIMeta{Count: &count})
}

// DashboardRefresh recomposes the snapshot immediately.
// Returns 429 when manual refreshes arrive faster than the configured rate.
func (h *Handler) DashboardRefresh(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.dashboard == nil {
		rw.ServiceUnavailable("Refresh is not available")
		return
	}

	snap, err := h.dashboard.TriggerRefresh(r.Context())
	switch {
	case errors.Is(err, refresh.ErrThrottled):
		rw.TooManyRequests("Refresh requested too frequently", h.config.Refresh.ManualInterval)
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Manual refresh failed")
		rw.ServiceUnavailable("Refresh failed; the previous snapshot is still served")
		return
	}

	rw.SuccessWithMeta(snap.Summary(), snapshotMeta(snap))
}
