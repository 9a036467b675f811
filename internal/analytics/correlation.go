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

// Pearson returns the Pearson correlation coefficient of x and y in [-1, 1].
//
// Mismatched lengths, empty input and zero variance in either series all
// return 0, which the dashboard treats as "no correlation data". Index pairs
// where either value is non-finite are skipped.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	var n, sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			continue
		}
		n++
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}
	if n == 0 {
		return 0
	}

	denomX := n*sumX2 - sumX*sumX
	denomY := n*sumY2 - sumY*sumY
	if denomX <= 0 || denomY <= 0 {
		return 0
	}

	r := (n*sumXY - sumX*sumY) / math.Sqrt(denomX*denomY)
	switch {
	case !isFinite(r):
		return 0
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}

// AlignSeries pairs two bucketed series on their common keys, in key order.
// Points are keyed by Date, or by Label when Date is empty.
func AlignSeries(a, b []models.ChartPoint) ([]float64, []float64) {
	bValues := make(map[string]float64, len(b))
	for _, p := range b {
		bValues[pointKey(p)] = p.Value
	}

	keys := make([]string, 0, len(a))
	aValues := make(map[string]float64, len(a))
	for _, p := range a {
		key := pointKey(p)
		if _, ok := bValues[key]; !ok {
			continue
		}
		if _, seen := aValues[key]; !seen {
			keys = append(keys, key)
		}
		aValues[key] = p.Value
	}
	sort.Strings(keys)

	x := make([]float64, len(keys))
	y := make([]float64, len(keys))
	for i, key := range keys {
		x[i] = aValues[key]
		y[i] = bValues[key]
	}
	return x, y
}

func pointKey(p models.ChartPoint) string {
	if p.Date != "" {
		return p.Date
	}
	return p.Label
}
