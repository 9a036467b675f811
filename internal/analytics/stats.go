// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"math"
	"sort"

	"github.com/tomtom215/meridian/internal/models"
)

// Helper functions for statistics

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteOrZero keeps NaN and Inf out of anything that reaches a snapshot.
func finiteOrZero(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}

// finiteMap zeroes map entries that overflowed.
func finiteMap(m map[string]float64) {
	for k, v := range m {
		m[k] = finiteOrZero(v)
	}
}

// finiteValues returns a copy of vals without NaN and Inf entries.
func finiteValues(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// ratioPercent returns num/den*100, or 0 when den is 0.
// Multiplying first keeps integer ratios such as 600/1000 exact.
func ratioPercent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return finiteOrZero(num * 100 / den)
}

func sum(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return sum(vals) / float64(len(vals))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func minFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	result := vals[0]
	for _, v := range vals[1:] {
		if v < result {
			result = v
		}
	}
	return result
}

func maxFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	result := vals[0]
	for _, v := range vals[1:] {
		if v > result {
			result = v
		}
	}
	return result
}

// Values extracts the values of a series in order.
func Values(points []models.ChartPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
