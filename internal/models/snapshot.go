// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package models

import "time"

// KPIMetric is a dashboard KPI derived by the composer from a KPITarget.
type KPIMetric struct {
	ID            string         `json:"id"`
	Category      string         `json:"category"`
	Value         float64        `json:"value"`
	Target        float64        `json:"target"`
	Unit          string         `json:"unit"`
	Trend         TrendDirection `json:"trend"`
	ChangePercent float64        `json:"changePercent"`
}

// DashboardSnapshot is the complete set of derived metrics produced by one
// composition. It is built fresh on every refresh and never updated in place.
//
// The JSON names overview, revenueMetrics, userMetrics, conversionMetrics and
// kpiTargets are bound to by the presentation layer and must not change.
type DashboardSnapshot struct {
	ID                string            `json:"id"`
	GeneratedAt       time.Time         `json:"generatedAt"`
	Overview          Overview          `json:"overview"`
	RevenueMetrics    RevenueMetrics    `json:"revenueMetrics"`
	UserMetrics       UserMetrics       `json:"userMetrics"`
	ConversionMetrics ConversionMetrics `json:"conversionMetrics"`
	KPITargets        []KPIMetric       `json:"kpiTargets"`
	DataQuality       DataQuality       `json:"dataQuality"`
}

// Overview holds the headline ratios of the dashboard.
type Overview struct {
	TotalRevenue           float64     `json:"totalRevenue"`
	TotalUsers             int         `json:"totalUsers"`
	ActiveUsers            int         `json:"activeUsers"`
	ARPU                   float64     `json:"arpu"`
	MRR                    float64     `json:"mrr"`
	ChurnRate              float64     `json:"churnRate"`
	CustomerLifetimeValue  float64     `json:"customerLifetimeValue"`
	AverageSessionDuration float64     `json:"averageSessionDuration"`
	RevenueTrend           TrendResult `json:"revenueTrend"`
	UserTrend              TrendResult `json:"userTrend"`
}

// RevenueMetrics holds revenue series and breakdowns.
type RevenueMetrics struct {
	Daily         []ChartPoint       `json:"daily"`
	Weekly        []ChartPoint       `json:"weekly"`
	Monthly       []ChartPoint       `json:"monthly"`
	MovingAverage []ChartPoint       `json:"movingAverage"`
	BySource      map[string]float64 `json:"bySource"`
	ByPlan        map[string]float64 `json:"byPlan"`
	Percentiles   PercentileSet      `json:"percentiles"`
	Trend         TrendResult        `json:"trend"`
}

// UserMetrics holds acquisition, engagement and retention results.
type UserMetrics struct {
	AcquisitionDaily       []ChartPoint            `json:"acquisitionDaily"`
	AcquisitionWeekly      []ChartPoint            `json:"acquisitionWeekly"`
	AcquisitionMonthly     []ChartPoint            `json:"acquisitionMonthly"`
	AcquisitionBySource    map[string]int          `json:"acquisitionBySource"`
	DailyActiveUsers       []ChartPoint            `json:"dailyActiveUsers"`
	SessionDuration        []ChartPoint            `json:"sessionDuration"`
	SessionPercentiles     PercentileSet           `json:"sessionPercentiles"`
	RetentionCurves        map[string][]ChartPoint `json:"retentionCurves"`
	RetentionSummary       RetentionSummary        `json:"retentionSummary"`
	RevenueUserCorrelation float64                 `json:"revenueUserCorrelation"`
	Trend                  TrendResult             `json:"trend"`
}

// ConversionMetrics holds the analysis of every funnel.
type ConversionMetrics struct {
	Funnels                  []FunnelResult `json:"funnels"`
	AverageOverallConversion float64        `json:"averageOverallConversion"`
}

// DataQuality reports records the engine skipped or flagged while composing.
type DataQuality struct {
	RecordsProcessed int            `json:"recordsProcessed"`
	SkippedRecords   map[string]int `json:"skippedRecords"`
	Warnings         []string       `json:"warnings"`
}

// SnapshotSummary is the compact form of a persisted snapshot used by history listings.
type SnapshotSummary struct {
	ID                string    `json:"id"`
	GeneratedAt       time.Time `json:"generatedAt"`
	TotalRevenue      float64   `json:"totalRevenue"`
	TotalUsers        int       `json:"totalUsers"`
	MRR               float64   `json:"mrr"`
	ChurnRate         float64   `json:"churnRate"`
	OverallConversion float64   `json:"overallConversion"`
	Warnings          int       `json:"warnings"`
}

// Summary returns the compact form of the snapshot.
func (s *DashboardSnapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:                s.ID,
		GeneratedAt:       s.GeneratedAt,
		TotalRevenue:      s.Overview.TotalRevenue,
		TotalUsers:        s.Overview.TotalUsers,
		MRR:               s.Overview.MRR,
		ChurnRate:         s.Overview.ChurnRate,
		OverallConversion: s.ConversionMetrics.AverageOverallConversion,
		Warnings:          len(s.DataQuality.Warnings),
	}
}
