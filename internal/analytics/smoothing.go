// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"github.com/tomtom215/meridian/internal/models"
)

// MovingAverage computes a trailing mean over series.
//
// The window at index i is series[max(0, i-window+1) .. i], so the first
// window-1 points use partial windows instead of being left undefined. The
// output has the same length as the input. Non-finite entries are ignored
// within a window; a window without any finite entry yields 0, as does a
// mean that cannot be represented.
//
// A window <= 0 returns ErrInvalidWindow.
func MovingAverage(series []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	out := make([]float64, len(series))
	for i := range series {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		// Running mean; a plain sum overflows for values near MaxFloat64.
		var mean float64
		var n int
		for _, v := range series[start : i+1] {
			if isFinite(v) {
				n++
				mean += (v - mean) / float64(n)
			}
		}
		out[i] = finiteOrZero(mean)
	}
	return out, nil
}

// SmoothPoints applies MovingAverage to a series of chart points, keeping the
// bucket keys of the input.
func SmoothPoints(points []models.ChartPoint, window int) ([]models.ChartPoint, error) {
	smoothed, err := MovingAverage(Values(points), window)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChartPoint, len(points))
	for i, p := range points {
		out[i] = models.ChartPoint{Date: p.Date, Label: p.Label, Value: smoothed[i]}
	}
	return out, nil
}
