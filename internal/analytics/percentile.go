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

// Percentile returns the p-th percentile (0..100) of series using linear
// interpolation between closest ranks. The input is not modified.
//
// Non-finite values are ignored. It is a precondition that the series holds at
// least one finite value; otherwise ErrEmptySeries is returned.
func Percentile(series []float64, p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return 0, ErrInvalidPercentile
	}

	sorted := finiteValues(series)
	if len(sorted) == 0 {
		return 0, ErrEmptySeries
	}
	sort.Float64s(sorted)

	idx := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower], nil
	}

	frac := idx - float64(lower)
	v := sorted[lower] + (sorted[upper]-sorted[lower])*frac
	if !isFinite(v) {
		// The difference overflows for ranks of opposite sign near MaxFloat64.
		v = sorted[lower]*(1-frac) + sorted[upper]*frac
	}
	return finiteOrZero(v), nil
}

// Percentiles computes several percentiles of one series.
// The result is index-aligned with ps.
func Percentiles(series []float64, ps ...float64) ([]float64, error) {
	out := make([]float64, len(ps))
	for i, p := range ps {
		v, err := Percentile(series, p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// percentileSet returns p50/p90/p95, or zeros for a series without finite values.
func percentileSet(series []float64) models.PercentileSet {
	vals, err := Percentiles(series, 50, 90, 95)
	if err != nil {
		return models.PercentileSet{}
	}
	return models.PercentileSet{P50: vals[0], P90: vals[1], P95: vals[2]}
}
