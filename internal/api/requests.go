// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"github.com/tomtom215/meridian/internal/models"
)

// maxIngestBatch caps the records accepted by one ingest request.
const maxIngestBatch = 10000

// defaultPercentiles are reported when a percentile request names none.
var defaultPercentiles = []float64{50, 90, 95}

// PercentileRequest is the body of POST /api/v1/analytics/percentile.
type PercentileRequest struct {
	Series      []float64 `json:"series" validate:"required,min=1,dive,finite"`
	Percentiles []float64 `json:"percentiles,omitempty" validate:"omitempty,max=20,dive,gte=0,lte=100"`
}

// PercentileValue is one computed percentile.
type PercentileValue struct {
	Percentile float64 `json:"percentile"`
	Value      float64 `json:"value"`
}

// CorrelationRequest is the body of POST /api/v1/analytics/correlation.
// Either the raw X and Y series or two dated series A and B are given;
// dated series are paired on common dates.
type CorrelationRequest struct {
	X       []float64           `json:"x,omitempty" validate:"omitempty,dive,finite"`
	Y       []float64           `json:"y,omitempty" validate:"omitempty,dive,finite"`
	SeriesA []models.ChartPoint `json:"seriesA,omitempty"`
	SeriesB []models.ChartPoint `json:"seriesB,omitempty"`
}

// CorrelationResult is the response of the correlation operation.
type CorrelationResult struct {
	Coefficient float64 `json:"coefficient"`
	Pairs       int     `json:"pairs"`
}

// FunnelRequest is the body of POST /api/v1/analytics/funnel.
type FunnelRequest struct {
	Funnels []models.Funnel `json:"funnels" validate:"required,min=1,max=100"`
}

// FunnelResponse is the response of the funnel operation.
type FunnelResponse struct {
	Funnels                  []models.FunnelResult `json:"funnels"`
	AverageOverallConversion float64               `json:"averageOverallConversion"`
	Skipped                  int                   `json:"skipped"`
}

// RetentionRequest is the body of POST /api/v1/analytics/retention.
type RetentionRequest struct {
	Records []models.RetentionRecord `json:"records" validate:"required,min=1,max=10000"`
}

// RetentionResponse is the response of the retention operation.
type RetentionResponse struct {
	Curves   map[string][]models.ChartPoint `json:"curves"`
	Summary  models.RetentionSummary        `json:"summary"`
	Warnings []string                       `json:"warnings,omitempty"`
	Skipped  int                            `json:"skipped"`
}

// SeriesResponse is the response of GET /api/v1/analytics/series.
type SeriesResponse struct {
	Kind        string               `json:"kind"`
	Period      string               `json:"period"`
	Window      int                  `json:"window"`
	Points      []models.ChartPoint  `json:"points"`
	Smoothed    []models.ChartPoint  `json:"smoothed"`
	Trend       models.TrendResult   `json:"trend"`
	Percentiles models.PercentileSet `json:"percentiles"`
	Skipped     int                  `json:"skipped"`
}

// IngestResponse is the response of POST /api/v1/records/{kind}.
type IngestResponse struct {
	Kind     string         `json:"kind"`
	Accepted int            `json:"accepted"`
	Skipped  int            `json:"skipped"`
	Inserted map[string]int `json:"inserted"`
	Reasons  map[string]int `json:"reasons,omitempty"`
}
