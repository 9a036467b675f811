// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/meridian/internal/models"
)

func TestBuildRetentionCurves(t *testing.T) {
	records := []models.RetentionRecord{
		{Cohort: "2024-02", Period: 1, TotalUsers: 200, ActiveUsers: 120},
		{Cohort: "2024-01", Period: 2, TotalUsers: 100, ActiveUsers: 40},
		{Cohort: "2024-01", Period: 0, TotalUsers: 100, ActiveUsers: 100},
		{Cohort: "2024-01", Period: 1, TotalUsers: 100, ActiveUsers: 60},
	}

	curves := BuildRetentionCurves(records)
	if len(curves) != 2 {
		t.Fatalf("expected 2 cohorts, got %d", len(curves))
	}

	checkPoints(t, "2024-01", curves["2024-01"], []models.ChartPoint{
		{Date: "2024-01-01", Label: "0", Value: 100},
		{Date: "2024-01-08", Label: "1", Value: 60},
		{Date: "2024-01-15", Label: "2", Value: 40},
	})
	checkPoints(t, "2024-02", curves["2024-02"], []models.ChartPoint{
		{Date: "2024-02-08", Label: "1", Value: 60},
	})
}

func TestBuildRetentionCurves_ZeroTotal(t *testing.T) {
	curves := BuildRetentionCurves([]models.RetentionRecord{
		{Cohort: "2024-01", Period: 1, TotalUsers: 0, ActiveUsers: 0},
	})

	points := curves["2024-01"]
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if math.IsNaN(points[0].Value) || points[0].Value != 0 {
		t.Errorf("expected rate 0 for zero total users, got %v", points[0].Value)
	}
}

func TestBuildRetentionCurves_Empty(t *testing.T) {
	curves := BuildRetentionCurves(nil)
	if curves == nil || len(curves) != 0 {
		t.Errorf("expected empty non-nil map, got %v", curves)
	}
}

func TestAnalyzeRetention_ActiveExceedsTotal(t *testing.T) {
	analysis := AnalyzeRetention([]models.RetentionRecord{
		{Cohort: "2024-03", Period: 1, TotalUsers: 50, ActiveUsers: 60},
	})

	if got := analysis.Curves["2024-03"][0].Value; got != 120 {
		t.Errorf("expected rate surfaced as 120, got %v", got)
	}
	if len(analysis.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(analysis.Warnings))
	}
	if !strings.Contains(analysis.Warnings[0], "2024-03") {
		t.Errorf("warning should name the cohort: %s", analysis.Warnings[0])
	}
}

func TestAnalyzeRetention_MergesDuplicates(t *testing.T) {
	curves := BuildRetentionCurves([]models.RetentionRecord{
		{Cohort: "2024-01", Period: 1, TotalUsers: 100, ActiveUsers: 50},
		{Cohort: "2024-01", Period: 1, TotalUsers: 100, ActiveUsers: 30},
	})

	checkPoints(t, "merged", curves["2024-01"], []models.ChartPoint{
		{Date: "2024-01-08", Label: "1", Value: 40},
	})
}

func TestAnalyzeRetention_UnparseableCohort(t *testing.T) {
	curves := BuildRetentionCurves([]models.RetentionRecord{
		{Cohort: "legacy", Period: 2, TotalUsers: 10, ActiveUsers: 5},
	})

	checkPoints(t, "legacy", curves["legacy"], []models.ChartPoint{
		{Label: "2", Value: 50},
	})
}

func TestSummarizeRetention(t *testing.T) {
	records := []models.RetentionRecord{
		{Cohort: "2024-01", Period: 0, TotalUsers: 100, ActiveUsers: 100},
		{Cohort: "2024-01", Period: 1, TotalUsers: 100, ActiveUsers: 50},
		{Cohort: "2024-01", Period: 4, TotalUsers: 100, ActiveUsers: 30},
		{Cohort: "2024-02", Period: 0, TotalUsers: 200, ActiveUsers: 200},
		{Cohort: "2024-02", Period: 1, TotalUsers: 200, ActiveUsers: 140},
	}

	summary := SummarizeRetention(records)

	if summary.TotalCohorts != 2 {
		t.Errorf("expected 2 cohorts, got %d", summary.TotalCohorts)
	}
	if summary.TotalUsersTracked != 300 {
		t.Errorf("expected 300 users tracked, got %d", summary.TotalUsersTracked)
	}
	checkFloat(t, "week1", summary.Week1Retention, 60)
	checkFloat(t, "week4", summary.Week4Retention, 30)
	checkFloat(t, "overall", summary.OverallAverageRetention, (50.0+30+70)/3)
	if summary.BestPerformingCohort != "2024-02" {
		t.Errorf("expected best cohort 2024-02, got %s", summary.BestPerformingCohort)
	}
	if summary.WorstPerformingCohort != "2024-01" {
		t.Errorf("expected worst cohort 2024-01, got %s", summary.WorstPerformingCohort)
	}
	if summary.RetentionTrend != RetentionInsufficientData {
		t.Errorf("expected %s with 2 cohorts, got %s", RetentionInsufficientData, summary.RetentionTrend)
	}

	if len(summary.Curve) != 3 {
		t.Fatalf("expected curve over periods 0, 1, 4, got %d points", len(summary.Curve))
	}
	week1 := summary.Curve[1]
	if week1.Period != 1 || week1.CohortsWithData != 2 {
		t.Errorf("unexpected week 1 stats: %+v", week1)
	}
	checkFloat(t, "week1 min", week1.MinRetention, 50)
	checkFloat(t, "week1 max", week1.MaxRetention, 70)
	checkFloat(t, "week1 median", week1.MedianRetention, 60)
}

func TestSummarizeRetention_Empty(t *testing.T) {
	summary := SummarizeRetention(nil)
	if summary.TotalCohorts != 0 {
		t.Errorf("expected no cohorts, got %d", summary.TotalCohorts)
	}
	if summary.RetentionTrend != RetentionInsufficientData {
		t.Errorf("expected %s, got %s", RetentionInsufficientData, summary.RetentionTrend)
	}
	if summary.Curve == nil {
		t.Error("expected non-nil curve")
	}
}

func TestRetentionTrend(t *testing.T) {
	cohortsWith := func(avgs ...float64) []*cohortData {
		out := make([]*cohortData, len(avgs))
		for i, a := range avgs {
			out[i] = &cohortData{averageRetention: a, hasRetention: true}
		}
		return out
	}

	tests := []struct {
		name     string
		cohorts  []*cohortData
		expected string
	}{
		{"insufficient data with fewer than 4 cohorts", cohortsWith(10, 20, 30), RetentionInsufficientData},
		{"improving when late cohorts retain better", cohortsWith(20, 22, 40, 42), RetentionImproving},
		{"declining when late cohorts retain worse", cohortsWith(60, 58, 30, 28), RetentionDeclining},
		{"stable within threshold", cohortsWith(50, 52, 53, 51), RetentionStable},
		{
			name:     "cohorts without post-signup data ignored",
			cohorts:  append(cohortsWith(20, 22, 40), &cohortData{}),
			expected: RetentionInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retentionTrend(tt.cohorts); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
