// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import "errors"

// Precondition errors. These indicate a caller bug, not bad data.
var (
	// ErrInvalidWindow is returned when a moving-average window is not positive.
	ErrInvalidWindow = errors.New("moving average window must be positive")

	// ErrEmptySeries is returned when a percentile is requested over no finite values.
	ErrEmptySeries = errors.New("series has no finite values")

	// ErrInvalidPercentile is returned when p is outside [0, 100].
	ErrInvalidPercentile = errors.New("percentile must be between 0 and 100")

	// ErrUnknownPeriod is returned for bucket periods other than daily, weekly and monthly.
	ErrUnknownPeriod = errors.New("unknown bucket period")
)
