// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package analytics implements the KPI aggregation engine behind the Meridian dashboard.

Every function in this package is a pure transformation: it borrows the caller's
record slices for the duration of the call, never mutates them, and returns newly
allocated results. There is no shared state, so the functions are safe to call
from concurrent goroutines and on a tight refresh loop.

# Components

  - BucketByPeriod: groups timestamped samples into daily, weekly (Sunday-aligned)
    or monthly buckets and reduces each bucket by sum, count or mean
  - ClassifyTrend: compares the endpoints of a series with a ±0.5% dead-zone
  - MovingAverage: trailing windowed mean with partial windows at the start
  - Percentile: linear-interpolation percentile over an unsorted series
  - Pearson: correlation coefficient between two equal-length series
  - BuildRetentionCurves / SummarizeRetention: per-cohort retention curves
  - AnalyzeFunnel: per-stage conversion and dropoff rates
  - Compose: assembles all of the above into a models.DashboardSnapshot

# Error Policy

Data-quality problems never fail a call. Unparseable dates and non-finite values
are treated as absent, zero denominators resolve to 0, and short series resolve
to a neutral trend. Only caller bugs are reported as errors:

  - ErrInvalidWindow: MovingAverage called with window <= 0
  - ErrEmptySeries: Percentile called without any finite value
  - ErrInvalidPercentile: Percentile called with p outside [0, 100]
  - ErrUnknownPeriod: ParsePeriod called with an unsupported period name

Non-monotonic funnels and retention records with more active than total users
are surfaced as computed (negative dropoff, retention above 100%) and reported
as warnings rather than clamped.

# Example

	daily := analytics.BucketByPeriod(analytics.RevenueSamples(records), analytics.PeriodDaily, analytics.ReduceSum)
	trend := analytics.ClassifyTrend(analytics.Values(daily))
	smoothed, err := analytics.MovingAverage(analytics.Values(daily), 7)
*/
package analytics
