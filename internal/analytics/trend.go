// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"math"

	"github.com/tomtom215/meridian/internal/models"
)

// trendDeadZone is the percent change within which a series is reported as neutral.
const trendDeadZone = 0.5

// ClassifyTrend compares the first and last finite values of a series.
//
// A series with fewer than two finite values is neutral. When the first value
// is zero no percentage is defined: the trend is up if the last value is
// positive, neutral otherwise, and PercentChange is 0. The returned
// PercentChange is the absolute change; the sign is carried by Direction.
func ClassifyTrend(series []float64) models.TrendResult {
	values := finiteValues(series)
	if len(values) < 2 {
		return models.TrendResult{Direction: models.TrendNeutral}
	}

	first, last := values[0], values[len(values)-1]
	if first == 0 {
		if last > 0 {
			return models.TrendResult{Direction: models.TrendUp}
		}
		return models.TrendResult{Direction: models.TrendNeutral}
	}

	change := finiteOrZero((last - first) * 100 / first)
	direction := models.TrendNeutral
	switch {
	case change > trendDeadZone:
		direction = models.TrendUp
	case change < -trendDeadZone:
		direction = models.TrendDown
	}

	return models.TrendResult{Direction: direction, PercentChange: math.Abs(change)}
}
