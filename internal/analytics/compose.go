// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"fmt"
	"time"

	"github.com/tomtom215/meridian/internal/models"
)

// Default composition options
const (
	DefaultMovingAverageWindow = 7
	DefaultLTVFallbackMonths   = 24.0
)

// KPI identifiers understood by Compose.
const (
	KPITotalRevenue           = "total_revenue"
	KPIMRR                    = "mrr"
	KPIARPU                   = "arpu"
	KPICustomerLifetimeValue  = "customer_lifetime_value"
	KPIChurnRate              = "churn_rate"
	KPINewUsers               = "new_users"
	KPIActiveUsers            = "active_users"
	KPIAverageSessionDuration = "average_session_duration"
	KPIOverallConversion      = "overall_conversion"
	KPIWeek1Retention         = "week1_retention"
)

// KnownKPIs lists every KPI identifier Compose can evaluate.
var KnownKPIs = []string{
	KPITotalRevenue,
	KPIMRR,
	KPIARPU,
	KPICustomerLifetimeValue,
	KPIChurnRate,
	KPINewUsers,
	KPIActiveUsers,
	KPIAverageSessionDuration,
	KPIOverallConversion,
	KPIWeek1Retention,
}

// IsKnownKPI reports whether id names a KPI Compose can evaluate.
func IsKnownKPI(id string) bool {
	for _, known := range KnownKPIs {
		if id == known {
			return true
		}
	}
	return false
}

// Inputs are the records and supplied values a snapshot is composed from.
//
// MRR, ChurnRate and TotalUsers override the values Compose would otherwise
// derive from the records. Skipped carries per-kind counts of records that
// were dropped before reaching the engine (for example by boundary validation)
// and is merged into the snapshot's data-quality report.
type Inputs struct {
	Records    models.RecordSet
	KPITargets []models.KPITarget
	MRR        *float64
	ChurnRate  *float64
	TotalUsers *int
	Skipped    map[string]int
}

// Options control a composition.
type Options struct {
	// ID and Now are copied into the snapshot. Compose never generates them
	// itself so that identical inputs give identical snapshots.
	ID  string
	Now time.Time

	// MovingAverageWindow is the trailing window, in days, applied to the
	// daily revenue series. Values <= 0 fall back to the default with a warning.
	MovingAverageWindow int

	// LTVFallbackMonths is the customer lifetime, in months, assumed when
	// there is no churn to derive one from.
	LTVFallbackMonths float64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		MovingAverageWindow: DefaultMovingAverageWindow,
		LTVFallbackMonths:   DefaultLTVFallbackMonths,
	}
}

// composition carries intermediate series between the sections of Compose.
type composition struct {
	opts     Options
	skipped  map[string]int
	warnings []string

	revenueDaily     []models.ChartPoint
	revenueMonthly   []models.ChartPoint
	recurringMonthly []models.ChartPoint
	acqDaily         []models.ChartPoint
	acqMonthly       []models.ChartPoint
	cohorts          []*cohortData
	funnelOverall    []float64
}

// Compose derives a complete dashboard snapshot from in.
//
// Compose performs no I/O and does not modify its inputs. Records the engine
// cannot use (unparseable dates, non-finite values) are excluded from every
// aggregate and counted in DataQuality.SkippedRecords. No NaN or Inf value
// reaches the returned snapshot.
func Compose(in Inputs, opts Options) *models.DashboardSnapshot {
	c := &composition{
		opts:    opts,
		skipped: make(map[string]int, len(models.AllRecordKinds)),
	}
	for kind, n := range in.Skipped {
		c.skipped[kind] += n
	}
	if c.opts.MovingAverageWindow <= 0 {
		c.warnf("moving average window %d is not positive, using %d",
			c.opts.MovingAverageWindow, DefaultMovingAverageWindow)
		c.opts.MovingAverageWindow = DefaultMovingAverageWindow
	}
	if c.opts.LTVFallbackMonths < 0 || !isFinite(c.opts.LTVFallbackMonths) {
		c.warnf("LTV fallback months %v is invalid, using %v",
			c.opts.LTVFallbackMonths, DefaultLTVFallbackMonths)
		c.opts.LTVFallbackMonths = DefaultLTVFallbackMonths
	}

	snap := &models.DashboardSnapshot{
		ID:          opts.ID,
		GeneratedAt: opts.Now,
	}

	revenue, totalRevenue := c.revenueMetrics(in.Records.Revenue)
	users, totalUsers, activeUsers, avgSession := c.userMetrics(in.Records.Acquisition, in.Records.Engagement, in.Records.Retention)
	conversion := c.conversionMetrics(in.Records.Funnels)

	if in.TotalUsers != nil {
		totalUsers = *in.TotalUsers
	}

	ov := models.Overview{
		TotalRevenue:           finiteOrZero(totalRevenue),
		TotalUsers:             totalUsers,
		ActiveUsers:            activeUsers,
		AverageSessionDuration: finiteOrZero(avgSession),
		RevenueTrend:           revenue.Trend,
		UserTrend:              users.Trend,
	}
	if totalUsers > 0 {
		ov.ARPU = finiteOrZero(totalRevenue / float64(totalUsers))
	}

	if in.MRR != nil {
		ov.MRR = finiteOrZero(*in.MRR)
	} else if n := len(c.recurringMonthly); n > 0 {
		ov.MRR = c.recurringMonthly[n-1].Value
	}

	if in.ChurnRate != nil {
		ov.ChurnRate = finiteOrZero(*in.ChurnRate)
	} else if hasPostSignupData(c.cohorts) {
		ov.ChurnRate = finiteOrZero(100 - users.RetentionSummary.OverallAverageRetention)
	}

	if ov.ChurnRate > 0 {
		ov.CustomerLifetimeValue = finiteOrZero(ov.ARPU / (ov.ChurnRate / 100))
	} else {
		ov.CustomerLifetimeValue = finiteOrZero(ov.ARPU * c.opts.LTVFallbackMonths)
	}

	snap.Overview = ov
	snap.RevenueMetrics = revenue
	snap.UserMetrics = users
	snap.ConversionMetrics = conversion
	snap.KPITargets = c.kpiMetrics(in.KPITargets, snap)

	warnings := c.warnings
	if warnings == nil {
		warnings = []string{}
	}
	snap.DataQuality = models.DataQuality{
		RecordsProcessed: in.Records.Len(),
		SkippedRecords:   c.skipped,
		Warnings:         warnings,
	}

	return snap
}

func (c *composition) warnf(format string, args ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *composition) revenueMetrics(records []models.RevenueRecord) (models.RevenueMetrics, float64) {
	all := RevenueSamples(records)
	samples := make([]models.MetricSample, 0, len(all))
	recurring := make([]models.MetricSample, 0, len(all))
	bySource := make(map[string]float64)
	byPlan := make(map[string]float64)
	var total float64

	for i, s := range all {
		if !usableSample(s) || s.Value < 0 {
			c.skipped[string(models.KindRevenue)]++
			continue
		}
		samples = append(samples, s)
		total += s.Value
		bySource[string(records[i].Source)] += s.Value
		byPlan[string(records[i].Plan)] += s.Value
		if records[i].Source.IsRecurring() {
			recurring = append(recurring, s)
		}
	}

	if !isFinite(total) {
		c.warnf("revenue total exceeds the representable range; overflowing sums are reported as 0")
	}
	finiteMap(bySource)
	finiteMap(byPlan)

	amounts := make([]float64, len(samples))
	for i, s := range samples {
		amounts[i] = s.Value
	}

	c.revenueDaily = BucketByPeriod(samples, PeriodDaily, ReduceSum)
	c.revenueMonthly = BucketByPeriod(samples, PeriodMonthly, ReduceSum)
	c.recurringMonthly = BucketByPeriod(recurring, PeriodMonthly, ReduceSum)

	// The window is positive here, so SmoothPoints cannot fail.
	smoothed, err := SmoothPoints(c.revenueDaily, c.opts.MovingAverageWindow)
	if err != nil {
		smoothed = []models.ChartPoint{}
	}

	return models.RevenueMetrics{
		Daily:         c.revenueDaily,
		Weekly:        BucketByPeriod(samples, PeriodWeekly, ReduceSum),
		Monthly:       c.revenueMonthly,
		MovingAverage: smoothed,
		BySource:      bySource,
		ByPlan:        byPlan,
		Percentiles:   percentileSet(amounts),
		Trend:         ClassifyTrend(Values(c.revenueDaily)),
	}, total
}

func (c *composition) userMetrics(
	acquisition []models.AcquisitionRecord,
	engagement []models.EngagementRecord,
	retention []models.RetentionRecord,
) (models.UserMetrics, int, int, float64) {
	// Acquisition
	acqAll := AcquisitionSamples(acquisition)
	acqSamples := make([]models.MetricSample, 0, len(acqAll))
	bySource := make(map[string]int)
	var totalUsers int
	for i, s := range acqAll {
		if !usableSample(s) || acquisition[i].NewUsers < 0 {
			c.skipped[string(models.KindAcquisition)]++
			continue
		}
		acqSamples = append(acqSamples, s)
		totalUsers += acquisition[i].NewUsers
		bySource[string(acquisition[i].Source)] += acquisition[i].NewUsers
	}
	c.acqDaily = BucketByPeriod(acqSamples, PeriodDaily, ReduceSum)
	c.acqMonthly = BucketByPeriod(acqSamples, PeriodMonthly, ReduceSum)

	// Engagement
	engAll := EngagementSamples(engagement)
	engSamples := make([]models.MetricSample, 0, len(engAll))
	activeUsers := make(map[string]struct{})
	durations := make([]float64, 0, len(engAll))
	for _, s := range engAll {
		if !usableSample(s) || s.Category == "" || s.Value < 0 {
			c.skipped[string(models.KindEngagement)]++
			continue
		}
		engSamples = append(engSamples, s)
		durations = append(durations, s.Value)
		activeUsers[s.Category] = struct{}{}
	}

	// Retention
	var warnings []string
	c.cohorts, warnings = groupCohorts(retention)
	analysis := analyzeCohorts(c.cohorts, warnings)
	c.warnings = append(c.warnings, analysis.Warnings...)

	revenueX, usersY := AlignSeries(c.revenueDaily, c.acqDaily)

	metrics := models.UserMetrics{
		AcquisitionDaily:       c.acqDaily,
		AcquisitionWeekly:      BucketByPeriod(acqSamples, PeriodWeekly, ReduceSum),
		AcquisitionMonthly:     c.acqMonthly,
		AcquisitionBySource:    bySource,
		DailyActiveUsers:       BucketByPeriod(ActiveUserSamples(engagement, PeriodDaily), PeriodDaily, ReduceCount),
		SessionDuration:        BucketByPeriod(engSamples, PeriodDaily, ReduceMean),
		SessionPercentiles:     percentileSet(durations),
		RetentionCurves:        analysis.Curves,
		RetentionSummary:       analysis.Summary,
		RevenueUserCorrelation: Pearson(revenueX, usersY),
		Trend:                  ClassifyTrend(Values(c.acqDaily)),
	}

	avgSession := average(durations)
	if !isFinite(avgSession) {
		c.warnf("session durations exceed the representable range; average reported as 0")
	}

	return metrics, totalUsers, len(activeUsers), avgSession
}

func (c *composition) conversionMetrics(funnels []models.Funnel) models.ConversionMetrics {
	results, avg := AnalyzeFunnels(funnels)
	for _, r := range results {
		if len(r.Stages) > 0 {
			c.funnelOverall = append(c.funnelOverall, r.OverallConversion)
		}
		for _, stage := range r.NonMonotonic {
			c.warnf("funnel %q stage %q has more users than the previous stage", r.Name, stage)
		}
	}
	return models.ConversionMetrics{
		Funnels:                  results,
		AverageOverallConversion: finiteOrZero(avg),
	}
}

// kpiMetrics evaluates every configured target against the composed snapshot.
// Targets are returned in configuration order; unknown IDs are skipped.
func (c *composition) kpiMetrics(targets []models.KPITarget, snap *models.DashboardSnapshot) []models.KPIMetric {
	metrics := make([]models.KPIMetric, 0, len(targets))
	for _, t := range targets {
		value, series, ok := c.kpiValue(t.ID, snap)
		if !ok {
			c.warnf("unknown KPI %q skipped", t.ID)
			continue
		}
		trend := ClassifyTrend(series)
		metrics = append(metrics, models.KPIMetric{
			ID:            t.ID,
			Category:      t.Category,
			Value:         finiteOrZero(value),
			Target:        finiteOrZero(t.Target),
			Unit:          t.Unit,
			Trend:         trend.Direction,
			ChangePercent: trend.PercentChange,
		})
	}
	return metrics
}

// kpiValue returns the current value of a KPI and the series its trend is read from.
func (c *composition) kpiValue(id string, snap *models.DashboardSnapshot) (float64, []float64, bool) {
	ov := snap.Overview
	switch id {
	case KPITotalRevenue:
		return ov.TotalRevenue, Values(c.revenueDaily), true
	case KPIMRR:
		return ov.MRR, Values(c.recurringMonthly), true
	case KPIARPU:
		return ov.ARPU, monthlyARPU(c.revenueMonthly, c.acqMonthly), true
	case KPICustomerLifetimeValue:
		return ov.CustomerLifetimeValue, nil, true
	case KPIChurnRate:
		return ov.ChurnRate, cohortChurnSeries(c.cohorts), true
	case KPINewUsers:
		return float64(ov.TotalUsers), Values(c.acqDaily), true
	case KPIActiveUsers:
		return float64(ov.ActiveUsers), Values(snap.UserMetrics.DailyActiveUsers), true
	case KPIAverageSessionDuration:
		return ov.AverageSessionDuration, Values(snap.UserMetrics.SessionDuration), true
	case KPIOverallConversion:
		return snap.ConversionMetrics.AverageOverallConversion, c.funnelOverall, true
	case KPIWeek1Retention:
		return snap.UserMetrics.RetentionSummary.Week1Retention, cohortPeriodSeries(c.cohorts, 1), true
	default:
		return 0, nil, false
	}
}

// monthlyARPU divides monthly revenue by monthly new users for months with users.
func monthlyARPU(revenue, users []models.ChartPoint) []float64 {
	rev, usr := AlignSeries(revenue, users)
	out := make([]float64, 0, len(rev))
	for i := range rev {
		if usr[i] > 0 {
			out = append(out, rev[i]/usr[i])
		}
	}
	return out
}

// hasPostSignupData reports whether any cohort has a period beyond signup.
func hasPostSignupData(cohorts []*cohortData) bool {
	for _, c := range cohorts {
		if c.hasRetention {
			return true
		}
	}
	return false
}
