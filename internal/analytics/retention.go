// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/tomtom215/meridian/internal/models"
)

// Retention trend labels
const (
	RetentionImproving        = "improving"
	RetentionDeclining        = "declining"
	RetentionStable           = "stable"
	RetentionInsufficientData = "insufficient_data"
)

// retentionTrendThreshold is the difference in average retention (percentage
// points) between late and early cohorts that counts as a trend.
const retentionTrendThreshold = 5.0

// minCohortsForTrend is the number of cohorts needed to compare halves.
const minCohortsForTrend = 4

// RetentionAnalysis is the full result of aggregating retention records.
type RetentionAnalysis struct {
	Curves   map[string][]models.ChartPoint
	Summary  models.RetentionSummary
	Warnings []string
}

type cohortPeriod struct {
	period int
	total  int
	active int
	rate   float64
}

type cohortData struct {
	name             string
	start            time.Time
	hasStart         bool
	size             int
	periods          []cohortPeriod
	averageRetention float64
	hasRetention     bool
}

// BuildRetentionCurves groups retention records by cohort and returns, for
// each cohort, its retention rate per period in ascending period order.
//
// The rate is activeUsers/totalUsers*100, or 0 when totalUsers is 0. Records
// with more active than total users are kept as-is, giving a rate above 100.
// Point labels hold the period; point dates hold the cohort start plus the
// period in weeks when the cohort parses as YYYY-MM.
func BuildRetentionCurves(records []models.RetentionRecord) map[string][]models.ChartPoint {
	return AnalyzeRetention(records).Curves
}

// AnalyzeRetention builds the per-cohort curves together with a cross-cohort
// summary and data-quality warnings.
//
// Records sharing a (cohort, period) pair are merged by adding their user counts.
func AnalyzeRetention(records []models.RetentionRecord) RetentionAnalysis {
	cohorts, warnings := groupCohorts(records)
	return analyzeCohorts(cohorts, warnings)
}

func analyzeCohorts(cohorts []*cohortData, warnings []string) RetentionAnalysis {
	curves := make(map[string][]models.ChartPoint, len(cohorts))
	for _, c := range cohorts {
		points := make([]models.ChartPoint, 0, len(c.periods))
		for _, p := range c.periods {
			point := models.ChartPoint{Label: strconv.Itoa(p.period), Value: p.rate}
			if c.hasStart {
				point.Date = c.start.AddDate(0, 0, p.period*7).Format(dayLayout)
			}
			points = append(points, point)
		}
		curves[c.name] = points
	}

	return RetentionAnalysis{
		Curves:   curves,
		Summary:  summarizeCohorts(cohorts),
		Warnings: warnings,
	}
}

// SummarizeRetention computes aggregate statistics across all cohorts.
func SummarizeRetention(records []models.RetentionRecord) models.RetentionSummary {
	return AnalyzeRetention(records).Summary
}

// groupCohorts merges records into cohorts sorted by name, each with periods
// sorted ascending.
func groupCohorts(records []models.RetentionRecord) ([]*cohortData, []string) {
	type key struct {
		cohort string
		period int
	}

	index := make(map[key]int)
	byCohort := make(map[string]*cohortData)
	for _, r := range records {
		c, ok := byCohort[r.Cohort]
		if !ok {
			c = &cohortData{name: r.Cohort}
			if start, err := time.Parse(monthLayout, r.Cohort); err == nil {
				c.start = start
				c.hasStart = true
			}
			byCohort[r.Cohort] = c
		}

		k := key{cohort: r.Cohort, period: r.Period}
		i, ok := index[k]
		if !ok {
			c.periods = append(c.periods, cohortPeriod{period: r.Period})
			i = len(c.periods) - 1
			index[k] = i
		}
		c.periods[i].total += r.TotalUsers
		c.periods[i].active += r.ActiveUsers
	}

	names := make([]string, 0, len(byCohort))
	for name := range byCohort {
		names = append(names, name)
	}
	sort.Strings(names)

	var warnings []string
	cohorts := make([]*cohortData, 0, len(names))
	for _, name := range names {
		c := byCohort[name]
		sort.Slice(c.periods, func(i, j int) bool {
			return c.periods[i].period < c.periods[j].period
		})

		var rates []float64
		for i := range c.periods {
			p := &c.periods[i]
			p.rate = ratioPercent(float64(p.active), float64(p.total))
			if p.active > p.total {
				warnings = append(warnings, fmt.Sprintf(
					"retention cohort %s period %d: active users (%d) exceed total users (%d)",
					c.name, p.period, p.active, p.total))
			}
			if p.total > c.size {
				c.size = p.total
			}
			if p.period > 0 {
				rates = append(rates, p.rate)
			}
		}
		if len(rates) > 0 {
			c.averageRetention = average(rates)
			c.hasRetention = true
		}
		cohorts = append(cohorts, c)
	}

	return cohorts, warnings
}

func summarizeCohorts(cohorts []*cohortData) models.RetentionSummary {
	summary := models.RetentionSummary{
		TotalCohorts: len(cohorts),
		Curve:        buildRetentionCurve(cohorts),
	}

	if len(cohorts) == 0 {
		summary.RetentionTrend = RetentionInsufficientData
		return summary
	}

	var week1Rates, week4Rates, allRates []float64
	var best, worst *cohortData
	for _, c := range cohorts {
		summary.TotalUsersTracked += c.size

		for _, p := range c.periods {
			switch p.period {
			case 1:
				week1Rates = append(week1Rates, p.rate)
			case 4:
				week4Rates = append(week4Rates, p.rate)
			}
			if p.period > 0 {
				allRates = append(allRates, p.rate)
			}
		}

		if !c.hasRetention {
			continue
		}
		if best == nil || c.averageRetention > best.averageRetention {
			best = c
		}
		if worst == nil || c.averageRetention < worst.averageRetention {
			worst = c
		}
	}

	summary.Week1Retention = average(week1Rates)
	summary.Week4Retention = average(week4Rates)
	summary.OverallAverageRetention = average(allRates)
	if best != nil {
		summary.BestPerformingCohort = best.name
		summary.WorstPerformingCohort = worst.name
	}
	summary.RetentionTrend = retentionTrend(cohorts)

	return summary
}

// buildRetentionCurve aggregates every period offset across cohorts.
func buildRetentionCurve(cohorts []*cohortData) []models.RetentionPeriodStats {
	byPeriod := make(map[int][]float64)
	for _, c := range cohorts {
		for _, p := range c.periods {
			byPeriod[p.period] = append(byPeriod[p.period], p.rate)
		}
	}

	periods := make([]int, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Ints(periods)

	curve := make([]models.RetentionPeriodStats, 0, len(periods))
	for _, period := range periods {
		rates := byPeriod[period]
		curve = append(curve, models.RetentionPeriodStats{
			Period:           period,
			AverageRetention: average(rates),
			MedianRetention:  median(rates),
			MinRetention:     minFloat(rates),
			MaxRetention:     maxFloat(rates),
			CohortsWithData:  len(rates),
		})
	}
	return curve
}

// retentionTrend compares the average retention of the later half of the
// cohorts with the earlier half. Cohorts without post-signup data are ignored.
func retentionTrend(cohorts []*cohortData) string {
	var averages []float64
	for _, c := range cohorts {
		if c.hasRetention {
			averages = append(averages, c.averageRetention)
		}
	}
	if len(averages) < minCohortsForTrend {
		return RetentionInsufficientData
	}

	mid := len(averages) / 2
	diff := average(averages[mid:]) - average(averages[:mid])
	switch {
	case diff > retentionTrendThreshold:
		return RetentionImproving
	case diff < -retentionTrendThreshold:
		return RetentionDeclining
	default:
		return RetentionStable
	}
}

// cohortChurnSeries returns 100 minus each cohort's average retention, in
// cohort order, for cohorts with post-signup data.
func cohortChurnSeries(cohorts []*cohortData) []float64 {
	out := make([]float64, 0, len(cohorts))
	for _, c := range cohorts {
		if c.hasRetention {
			out = append(out, 100-c.averageRetention)
		}
	}
	return out
}

// cohortPeriodSeries returns each cohort's rate at period, in cohort order,
// for cohorts that have that period.
func cohortPeriodSeries(cohorts []*cohortData, period int) []float64 {
	out := make([]float64, 0, len(cohorts))
	for _, c := range cohorts {
		for _, p := range c.periods {
			if p.period == period {
				out = append(out, p.rate)
				break
			}
		}
	}
	return out
}
