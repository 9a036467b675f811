// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"math"
	"testing"

	"github.com/tomtom215/meridian/internal/models"
)

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name          string
		series        []float64
		wantDirection models.TrendDirection
		wantPercent   float64
	}{
		{"empty", nil, models.TrendNeutral, 0},
		{"single value", []float64{42}, models.TrendNeutral, 0},
		{"flat", []float64{100, 100}, models.TrendNeutral, 0},
		{"up six percent", []float64{100, 106}, models.TrendUp, 6},
		{"down six percent", []float64{100, 94}, models.TrendDown, 6},
		{"inside dead-zone up", []float64{100, 100.4}, models.TrendNeutral, 0.4},
		{"inside dead-zone down", []float64{100, 99.5}, models.TrendNeutral, 0.5},
		{"only endpoints matter", []float64{100, 1, 500, 110}, models.TrendUp, 10},
		{"first zero last positive", []float64{0, 10}, models.TrendUp, 0},
		{"first zero last zero", []float64{0, 0}, models.TrendNeutral, 0},
		{"first zero last negative", []float64{0, -5}, models.TrendNeutral, 0},
		{"negative base", []float64{-100, -50}, models.TrendDown, 50},
		{"non-finite entries dropped", []float64{math.NaN(), 100, 120, math.Inf(1)}, models.TrendUp, 20},
		{"single finite value", []float64{math.NaN(), 5}, models.TrendNeutral, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTrend(tt.series)
			if got.Direction != tt.wantDirection {
				t.Errorf("expected direction %s, got %s", tt.wantDirection, got.Direction)
			}
			if !approxEqual(got.PercentChange, tt.wantPercent, 1e-6) {
				t.Errorf("expected percent change %v, got %v", tt.wantPercent, got.PercentChange)
			}
			if got.PercentChange < 0 {
				t.Errorf("percent change should never be negative, got %v", got.PercentChange)
			}
		})
	}
}
