// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

type stagedError struct{ stage string }

func (e stagedError) Error() string        { return "staged: " + e.stage }
func (e stagedError) RefreshStage() string { return e.stage }

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "test_table"))

	RecordDBQuery("select", "test_table", 5*time.Millisecond, nil)
	RecordDBQuery("select", "test_table", 5*time.Millisecond, errors.New("connection refused"))

	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "test_table")) - before; got != 1 {
		t.Errorf("expected 1 new query error, got %v", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/test/endpoint", "200"))

	RecordAPIRequest("GET", "/test/endpoint", "200", 10*time.Millisecond)
	RecordAPIRequest("GET", "/test/endpoint", "200", 20*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/test/endpoint", "200")) - before; got != 2 {
		t.Errorf("expected 2 new requests, got %v", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)

	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("expected 1 active request, got %v", got)
	}
	TrackActiveRequest(false)
}

func TestRecordSkipped(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		expect float64
	}{
		{"positive count", 3, 3},
		{"zero ignored", 0, 0},
		{"negative ignored", -2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := "test_" + tt.name
			before := testutil.ToFloat64(RecordsSkipped.WithLabelValues("revenue", reason))
			RecordSkipped("revenue", reason, tt.n)
			if got := testutil.ToFloat64(RecordsSkipped.WithLabelValues("revenue", reason)) - before; got != tt.expect {
				t.Errorf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestRecordRecordsLoaded(t *testing.T) {
	before := testutil.ToFloat64(RecordsLoaded.WithLabelValues("engagement"))

	RecordRecordsLoaded(map[string]int{"engagement": 12})

	if got := testutil.ToFloat64(RecordsLoaded.WithLabelValues("engagement")) - before; got != 12 {
		t.Errorf("expected 12, got %v", got)
	}
}

func TestRecordCompose(t *testing.T) {
	var before dto.Metric
	if err := ComposeDuration.Write(&before); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	warningsBefore := testutil.ToFloat64(ComposeWarnings)

	RecordCompose(3*time.Millisecond, 2)
	RecordCompose(time.Millisecond, 0)

	var after dto.Metric
	if err := ComposeDuration.Write(&after); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := after.GetHistogram().GetSampleCount() - before.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("expected 2 observations, got %d", got)
	}
	if got := testutil.ToFloat64(ComposeWarnings) - warningsBefore; got != 2 {
		t.Errorf("expected 2 warnings, got %v", got)
	}
}

func TestRefreshFailureStage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"plain error", errors.New("query failed"), "fetch"},
		{"deadline", fmt.Errorf("load records: %w", context.DeadlineExceeded), "timeout"},
		{"staged", stagedError{stage: "breaker_open"}, "breaker_open"},
		{"wrapped staged", fmt.Errorf("refresh: %w", stagedError{stage: "persist"}), "persist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RefreshFailureStage(tt.err); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRecordRefresh(t *testing.T) {
	successBefore := testutil.ToFloat64(RefreshTotal.WithLabelValues("manual", "success"))
	failureBefore := testutil.ToFloat64(RefreshTotal.WithLabelValues("manual", "failure"))
	fetchBefore := testutil.ToFloat64(RefreshFailures.WithLabelValues("fetch"))

	RecordRefresh("manual", 50*time.Millisecond, nil)
	RecordRefresh("manual", 50*time.Millisecond, errors.New("store unavailable"))

	if got := testutil.ToFloat64(RefreshTotal.WithLabelValues("manual", "success")) - successBefore; got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(RefreshTotal.WithLabelValues("manual", "failure")) - failureBefore; got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(RefreshFailures.WithLabelValues("fetch")) - fetchBefore; got != 1 {
		t.Errorf("expected 1 fetch failure, got %v", got)
	}
	if testutil.ToFloat64(RefreshLastSuccess) == 0 {
		t.Error("expected last success timestamp to be set")
	}
}

func TestRecordSnapshotPersist(t *testing.T) {
	before := testutil.ToFloat64(SnapshotPersistErrors)

	RecordSnapshotPersist(time.Millisecond, nil)
	RecordSnapshotPersist(time.Millisecond, errors.New("disk full"))

	if got := testutil.ToFloat64(SnapshotPersistErrors) - before; got != 1 {
		t.Errorf("expected 1 persist error, got %v", got)
	}
}

func TestSetKPIValues(t *testing.T) {
	SetKPIValues(map[string]float64{"mrr": 1234.5, "churn_rate": 4})

	if got := testutil.ToFloat64(DashboardKPIValue.WithLabelValues("mrr")); got != 1234.5 {
		t.Errorf("expected mrr 1234.5, got %v", got)
	}
	if got := testutil.ToFloat64(DashboardKPIValue.WithLabelValues("churn_rate")); got != 4 {
		t.Errorf("expected churn_rate 4, got %v", got)
	}
}
