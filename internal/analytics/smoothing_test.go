// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/meridian/internal/models"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		window int
		want   []float64
	}{
		{"empty", []float64{}, 3, []float64{}},
		{"window one is identity", []float64{3, 1.5, 7.25, 0.1}, 1, []float64{3, 1.5, 7.25, 0.1}},
		{"partial windows at start", []float64{2, 4, 6, 8}, 3, []float64{2, 3, 4, 6}},
		{"window larger than series", []float64{1, 2, 3}, 10, []float64{1, 1.5, 2}},
		{"non-finite ignored", []float64{2, math.NaN(), 4}, 2, []float64{2, 2, 4}},
		{"all non-finite window", []float64{math.NaN(), math.Inf(1)}, 1, []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MovingAverage(tt.series, tt.window)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkFloats(t, "smoothed", got, tt.want)
		})
	}
}

func TestMovingAverage_IdentityIsExact(t *testing.T) {
	series := []float64{0.1, 0.2, 0.3, 1e12, -7.77, 1.0 / 3}
	got, err := MovingAverage(series, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range series {
		if got[i] != series[i] {
			t.Errorf("index %d: expected exactly %v, got %v", i, series[i], got[i])
		}
	}
}

func TestMovingAverage_InvalidWindow(t *testing.T) {
	for _, window := range []int{0, -1} {
		if _, err := MovingAverage([]float64{1, 2}, window); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("window %d: expected ErrInvalidWindow, got %v", window, err)
		}
	}
}

func TestMovingAverage_DoesNotModifyInput(t *testing.T) {
	series := []float64{5, 10, 15}
	if _, err := MovingAverage(series, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkFloats(t, "input", series, []float64{5, 10, 15})
}

func TestSmoothPoints(t *testing.T) {
	points := []models.ChartPoint{
		{Date: "2024-01-01", Value: 10},
		{Date: "2024-01-02", Value: 20},
		{Date: "2024-01-03", Value: 60},
	}

	got, err := SmoothPoints(points, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkPoints(t, "smoothed", got, []models.ChartPoint{
		{Date: "2024-01-01", Value: 10},
		{Date: "2024-01-02", Value: 15},
		{Date: "2024-01-03", Value: 40},
	})

	if _, err := SmoothPoints(points, 0); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestMovingAverage_LargeValuesStayFinite(t *testing.T) {
	got, err := MovingAverage([]float64{1.5e308, 1.5e308, 1.5e308}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range got {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("index %d: expected finite value, got %v", i, v)
		}
	}
	if got[2] != 1.5e308 {
		t.Errorf("expected 1.5e308, got %v", got[2])
	}
}
