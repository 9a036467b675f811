// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/meridian/internal/analytics"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/validation"
)

// Series kinds accepted by GET /api/v1/analytics/series
const (
	SeriesRevenue     = "revenue"
	SeriesAcquisition = "acquisition"
	SeriesEngagement  = "engagement"
	SeriesActiveUsers = "active_users"
)

// maxSeriesWindow bounds the moving-average window of ad-hoc series.
const maxSeriesWindow = 365

// seriesSamples selects the samples and bucket reduction for a series kind.
// Engagement reports the mean session duration per bucket, active_users the
// number of distinct users with engagement in the bucket.
func seriesSamples(kind string, rs models.RecordSet, period analytics.Period) ([]models.MetricSample, analytics.Reduction, bool) {
	switch kind {
	case SeriesRevenue:
		return analytics.RevenueSamples(rs.Revenue), analytics.ReduceSum, true
	case SeriesAcquisition:
		return analytics.AcquisitionSamples(rs.Acquisition), analytics.ReduceSum, true
	case SeriesEngagement:
		return analytics.EngagementSamples(rs.Engagement), analytics.ReduceMean, true
	case SeriesActiveUsers:
		return analytics.ActiveUserSamples(rs.Engagement, period), analytics.ReduceCount, true
	default:
		return nil, 0, false
	}
}

func percentileSet(values []float64) models.PercentileSet {
	ps, err := analytics.Percentiles(values, 50, 90, 95)
	if err != nil {
		return models.PercentileSet{}
	}
	return models.PercentileSet{P50: ps[0], P90: ps[1], P95: ps[2]}
}

// Series returns an ad-hoc bucketed and smoothed series with its trend.
//
// Query parameters:
//   - kind: revenue, acquisition, engagement or active_users (required)
//   - period: daily, weekly or monthly (default from dashboard config)
//   - window: moving-average window, 1..365 (default from dashboard config)
//
// Responses are cached per snapshot until the next ingest.
func (h *Handler) Series(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()

	kind := strings.ToLower(strings.TrimSpace(q.Get("kind")))
	if _, _, ok := seriesSamples(kind, models.RecordSet{}, analytics.PeriodDaily); !ok {
		rw.BadRequest("kind must be one of revenue, acquisition, engagement, active_users")
		return
	}

	defaults := h.seriesDefaults()
	periodParam := q.Get("period")
	if periodParam == "" {
		periodParam = defaults.period
	}
	period, err := analytics.ParsePeriod(periodParam)
	if err != nil {
		rw.BadRequest("period must be one of daily, weekly, monthly")
		return
	}

	window, ok := getIntParam(r, "window", defaults.window)
	if !ok || window < 1 || window > maxSeriesWindow {
		rw.BadRequest(fmt.Sprintf("window must be an integer between 1 and %d", maxSeriesWindow))
		return
	}

	if h.reader == nil {
		rw.ServiceUnavailable("Record store is not available")
		return
	}

	key := fmt.Sprintf("%s|%s|%s|%d", h.snapshotID(), kind, period, window)
	if cached, hit := h.series.Get(key); hit {
		metrics.RecordSeriesCache(true, h.series.Len())
		rw.SuccessWithMeta(cached, &APIMeta{Cached: true})
		return
	}

	rs, err := h.reader.LoadRecords(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("kind", kind).Msg("Failed to load records for series")
		rw.ServiceUnavailable("Record store is unavailable")
		return
	}

	clean, skipped := validation.SanitizeRecords(rs)
	samples, reduce, _ := seriesSamples(kind, clean, period)
	points := analytics.BucketByPeriod(samples, period, reduce)

	smoothed, err := analytics.SmoothPoints(points, window)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	values := analytics.Values(points)
	resp := &SeriesResponse{
		Kind:        kind,
		Period:      string(period),
		Window:      window,
		Points:      points,
		Smoothed:    smoothed,
		Trend:       analytics.ClassifyTrend(values),
		Percentiles: percentileSet(values),
		Skipped:     skipped.Total(),
	}

	h.series.Add(key, resp)
	metrics.RecordSeriesCache(false, h.series.Len())
	rw.Success(resp)
}

type seriesParams struct {
	period string
	window int
}

// seriesDefaults returns the dashboard's period and window with engine
// defaults filled in.
func (h *Handler) seriesDefaults() seriesParams {
	d := seriesParams{
		period: string(analytics.PeriodDaily),
		window: analytics.DefaultMovingAverageWindow,
	}
	if h.dashboard == nil {
		return d
	}

	cfg := h.dashboard.DashboardConfig()
	if cfg.Period != "" {
		d.period = cfg.Period
	}
	if cfg.MovingAverageWindow > 0 {
		d.window = cfg.MovingAverageWindow
	}
	return d
}

func (h *Handler) snapshotID() string {
	if h.dashboard != nil {
		if snap := h.dashboard.Snapshot(); snap != nil {
			return snap.ID
		}
	}
	return "none"
}

// Percentile computes percentiles of a posted series.
func (h *Handler) Percentile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req PercentileRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	ps := req.Percentiles
	if len(ps) == 0 {
		ps = defaultPercentiles
	}

	values, err := analytics.Percentiles(req.Series, ps...)
	if err != nil {
		if errors.Is(err, analytics.ErrEmptySeries) || errors.Is(err, analytics.ErrInvalidPercentile) {
			rw.BadRequest(err.Error())
			return
		}
		rw.InternalError("Failed to compute percentiles")
		return
	}

	out := make([]PercentileValue, len(ps))
	for i, p := range ps {
		out[i] = PercentileValue{Percentile: p, Value: values[i]}
	}
	rw.Success(out)
}

// Correlation computes the Pearson coefficient of two posted series.
func (h *Handler) Correlation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CorrelationRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	var x, y []float64
	switch {
	case len(req.SeriesA) > 0 || len(req.SeriesB) > 0:
		x, y = analytics.AlignSeries(req.SeriesA, req.SeriesB)
	case len(req.X) > 0 || len(req.Y) > 0:
		if len(req.X) != len(req.Y) {
			rw.BadRequest(fmt.Sprintf("x and y must have the same length, got %d and %d", len(req.X), len(req.Y)))
			return
		}
		x, y = req.X, req.Y
	default:
		rw.BadRequest("either x and y or seriesA and seriesB are required")
		return
	}

	rw.Success(CorrelationResult{
		Coefficient: analytics.Pearson(x, y),
		Pairs:       len(x),
	})
}

// Funnel analyzes posted funnels. Malformed funnels are skipped.
func (h *Handler) Funnel(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req FunnelRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	clean, skipped := validation.SanitizeRecords(models.RecordSet{Funnels: req.Funnels})
	if len(clean.Funnels) == 0 {
		rw.ValidationError("No valid funnels in request", skipReasons(skipped))
		return
	}

	results, avg := analytics.AnalyzeFunnels(clean.Funnels)
	rw.Success(FunnelResponse{
		Funnels:                  results,
		AverageOverallConversion: avg,
		Skipped:                  skipped.Total(),
	})
}

// Retention builds cohort curves and the retention summary from posted
// records. Malformed records are skipped.
func (h *Handler) Retention(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RetentionRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	clean, skipped := validation.SanitizeRecords(models.RecordSet{Retention: req.Records})
	if len(clean.Retention) == 0 {
		rw.ValidationError("No valid retention records in request", skipReasons(skipped))
		return
	}

	analysis := analytics.AnalyzeRetention(clean.Retention)
	rw.Success(RetentionResponse{
		Curves:   analysis.Curves,
		Summary:  analysis.Summary,
		Warnings: analysis.Warnings,
		Skipped:  skipped.Total(),
	})
}

// skipReasons flattens a skip report into reason counts for error details.
func skipReasons(report *validation.SkipReport) map[string]interface{} {
	reasons := make(map[string]int)
	for _, e := range report.Entries() {
		reasons[e.Reason] += e.Count
	}
	return map[string]interface{}{
		"skipped": report.Total(),
		"reasons": reasons,
	}
}
