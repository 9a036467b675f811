// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package models

// ChartPoint is one point of a derived series.
//
// Date holds the bucket key (YYYY-MM-DD for daily and weekly buckets, YYYY-MM
// for monthly buckets). Label is used for non-date axes such as the
// "weeks since signup" axis of retention curves.
type ChartPoint struct {
	Date  string  `json:"date,omitempty"`
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
}

// TrendDirection classifies the movement of a series.
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// TrendResult is the output of trend classification.
// PercentChange is always non-negative; the sign is carried by Direction.
type TrendResult struct {
	Direction     TrendDirection `json:"direction"`
	PercentChange float64        `json:"percentChange"`
}

// StageResult is the analysed form of one funnel stage.
type StageResult struct {
	Name           string  `json:"name"`
	Users          int     `json:"users"`
	ConversionRate float64 `json:"conversionRate"`
	DropoffRate    float64 `json:"dropoffRate"`
}

// FunnelResult is the analysed form of a funnel.
// NonMonotonic lists stages whose user count exceeds the previous stage's.
type FunnelResult struct {
	Name              string        `json:"name,omitempty"`
	Stages            []StageResult `json:"stages"`
	OverallConversion float64       `json:"overallConversion"`
	NonMonotonic      []string      `json:"nonMonotonic,omitempty"`
}

// RetentionPeriodStats aggregates one period offset across all cohorts.
type RetentionPeriodStats struct {
	Period           int     `json:"period"`
	AverageRetention float64 `json:"averageRetention"`
	MedianRetention  float64 `json:"medianRetention"`
	MinRetention     float64 `json:"minRetention"`
	MaxRetention     float64 `json:"maxRetention"`
	CohortsWithData  int     `json:"cohortsWithData"`
}

// RetentionSummary provides aggregate statistics across all cohorts.
type RetentionSummary struct {
	TotalCohorts            int                    `json:"totalCohorts"`
	TotalUsersTracked       int                    `json:"totalUsersTracked"`
	Week1Retention          float64                `json:"week1Retention"`
	Week4Retention          float64                `json:"week4Retention"`
	OverallAverageRetention float64                `json:"overallAverageRetention"`
	BestPerformingCohort    string                 `json:"bestPerformingCohort,omitempty"`
	WorstPerformingCohort   string                 `json:"worstPerformingCohort,omitempty"`
	RetentionTrend          string                 `json:"retentionTrend"`
	Curve                   []RetentionPeriodStats `json:"curve"`
}

// PercentileSet holds the standard percentiles reported for a distribution.
type PercentileSet struct {
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
}
