// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package database

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/validation"
)

// testDBSemaphore serializes DuckDB use across tests; concurrent CGO
// connections from parallel tests can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database held for the whole test.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		SeedDays:  30,
		SeedValue: 7,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestNew_EmptyStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	empty, err := db.IsEmpty(ctx)
	if err != nil {
		t.Fatalf("IsEmpty() error = %v", err)
	}
	if !empty {
		t.Error("expected new store to be empty")
	}

	rs, err := db.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords() error = %v", err)
	}
	if rs.Len() != 0 {
		t.Errorf("expected no records, got %d", rs.Len())
	}
	if rs.Revenue == nil || rs.Funnels == nil {
		t.Error("expected non-nil empty slices from an empty store")
	}
}

func TestNew_FileBacked(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "meridian.duckdb")
	db, err := New(&config.DatabaseConfig{Path: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()
	if _, err := db.InsertRetention(ctx, []models.RetentionRecord{{Cohort: "2024-01", Period: 0, TotalUsers: 10, ActiveUsers: 10}}); err != nil {
		t.Fatalf("InsertRetention() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(&config.DatabaseConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	records, err := reopened.LoadRetention(ctx)
	if err != nil {
		t.Fatalf("LoadRetention() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 persisted retention record, got %d", len(records))
	}
}

func TestInsertAndLoadRecords(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := models.RecordSet{
		Revenue: []models.RevenueRecord{
			{Date: "2024-01-02", Amount: 200, Source: models.RevenueSubscription, Plan: models.PlanBasic},
			{Date: "2024-01-01T15:30:00Z", Amount: 150, Source: models.RevenueOneTime, Plan: models.PlanTrial},
		},
		Acquisition: []models.AcquisitionRecord{
			{Date: "2024-01-01", NewUsers: 10, Source: models.AcquisitionOrganic},
		},
		Engagement: []models.EngagementRecord{
			{UserID: "u2", Date: "2024-01-01", AverageSessionDuration: 12.5},
			{UserID: "u1", Date: "2024-01-01", AverageSessionDuration: 8},
		},
		Retention: []models.RetentionRecord{
			{Cohort: "2024-02", Period: 0, TotalUsers: 50, ActiveUsers: 50},
			{Cohort: "2024-01", Period: 1, TotalUsers: 100, ActiveUsers: 40},
			{Cohort: "2024-01", Period: 0, TotalUsers: 100, ActiveUsers: 100},
		},
		Funnels: []models.Funnel{
			{Name: "onboarding", Stages: []models.ConversionStage{{Name: "visit", Users: 100}, {Name: "signup", Users: 20}}},
		},
	}

	counts, err := db.InsertRecordSet(ctx, &in)
	if err != nil {
		t.Fatalf("InsertRecordSet() error = %v", err)
	}
	expectedCounts := map[string]int{"revenue": 2, "acquisition": 1, "engagement": 2, "retention": 3, "funnel": 1}
	if !reflect.DeepEqual(counts, expectedCounts) {
		t.Errorf("expected counts %v, got %v", expectedCounts, counts)
	}

	stored, err := db.RecordCounts(ctx)
	if err != nil {
		t.Fatalf("RecordCounts() error = %v", err)
	}
	if !reflect.DeepEqual(stored, expectedCounts) {
		t.Errorf("expected stored counts %v, got %v", expectedCounts, stored)
	}

	out, err := db.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords() error = %v", err)
	}

	// Revenue comes back ordered by time with timestamps preserved
	if len(out.Revenue) != 2 {
		t.Fatalf("expected 2 revenue records, got %d", len(out.Revenue))
	}
	if out.Revenue[0].Date != "2024-01-01T15:30:00Z" || out.Revenue[0].Amount != 150 {
		t.Errorf("unexpected first revenue record: %+v", out.Revenue[0])
	}
	if out.Revenue[1].Date != "2024-01-02" || out.Revenue[1].Plan != models.PlanBasic {
		t.Errorf("unexpected second revenue record: %+v", out.Revenue[1])
	}

	if out.Engagement[0].UserID != "u1" {
		t.Errorf("expected engagement ordered by user id within a date, got %q first", out.Engagement[0].UserID)
	}

	expectedRetention := []models.RetentionRecord{
		{Cohort: "2024-01", Period: 0, TotalUsers: 100, ActiveUsers: 100},
		{Cohort: "2024-01", Period: 1, TotalUsers: 100, ActiveUsers: 40},
		{Cohort: "2024-02", Period: 0, TotalUsers: 50, ActiveUsers: 50},
	}
	if !reflect.DeepEqual(out.Retention, expectedRetention) {
		t.Errorf("expected retention %v, got %v", expectedRetention, out.Retention)
	}

	if len(out.Funnels) != 1 || len(out.Funnels[0].Stages) != 2 || out.Funnels[0].Stages[1].Name != "signup" {
		t.Errorf("unexpected funnels: %+v", out.Funnels)
	}
}

func TestInsert_RejectsUnparseableDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.InsertRevenue(ctx, []models.RevenueRecord{
		{Date: "2024-01-01", Amount: 1, Source: models.RevenueAddon, Plan: models.PlanBasic},
		{Date: "not-a-date", Amount: 1, Source: models.RevenueAddon, Plan: models.PlanBasic},
	})
	if err == nil {
		t.Fatal("expected error for unparseable date, got nil")
	}

	// The whole batch is rolled back
	records, err := db.LoadRevenue(ctx)
	if err != nil {
		t.Fatalf("LoadRevenue() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected rollback to leave 0 records, got %d", len(records))
	}
}

func TestReplaceFunnels(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := []models.Funnel{
		{Name: "onboarding", Stages: []models.ConversionStage{{Name: "visit", Users: 100}, {Name: "signup", Users: 20}, {Name: "paid", Users: 5}}},
		{Name: "expansion", Stages: []models.ConversionStage{{Name: "basic", Users: 40}}},
	}
	if _, err := db.ReplaceFunnels(ctx, first); err != nil {
		t.Fatalf("ReplaceFunnels() error = %v", err)
	}

	second := []models.Funnel{
		{Name: "onboarding", Stages: []models.ConversionStage{{Name: "visit", Users: 300}, {Name: "signup", Users: 90}}},
	}
	n, err := db.ReplaceFunnels(ctx, second)
	if err != nil {
		t.Fatalf("ReplaceFunnels() error = %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 funnel written, got %d", n)
	}

	funnels, err := db.LoadFunnels(ctx)
	if err != nil {
		t.Fatalf("LoadFunnels() error = %v", err)
	}
	if len(funnels) != 2 {
		t.Fatalf("expected 2 funnels, got %d", len(funnels))
	}
	// Ordered by name: expansion, onboarding
	if funnels[0].Name != "expansion" {
		t.Errorf("expected expansion first, got %q", funnels[0].Name)
	}
	if len(funnels[1].Stages) != 2 || funnels[1].Stages[0].Users != 300 {
		t.Errorf("expected onboarding to be replaced, got %+v", funnels[1])
	}
}

func TestSeedMockData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	if err := db.SeedMockData(ctx, now); err != nil {
		t.Fatalf("SeedMockData() error = %v", err)
	}

	counts, err := db.RecordCounts(ctx)
	if err != nil {
		t.Fatalf("RecordCounts() error = %v", err)
	}
	for _, kind := range models.AllRecordKinds {
		if counts[string(kind)] == 0 {
			t.Errorf("expected seeded %s records", kind)
		}
	}

	// Seeding a non-empty store is a no-op
	if err := db.SeedMockData(ctx, now); err != nil {
		t.Fatalf("second SeedMockData() error = %v", err)
	}
	again, err := db.RecordCounts(ctx)
	if err != nil {
		t.Fatalf("RecordCounts() error = %v", err)
	}
	if !reflect.DeepEqual(counts, again) {
		t.Errorf("expected counts unchanged after reseed, got %v then %v", counts, again)
	}
}

func TestGenerateMockRecords(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

	a := GenerateMockRecords(60, 42, now)
	b := GenerateMockRecords(60, 42, now)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical records for identical inputs")
	}

	c := GenerateMockRecords(60, 43, now)
	if reflect.DeepEqual(a, c) {
		t.Error("expected different records for a different seed")
	}

	if len(a.Acquisition) != 60*5 {
		t.Errorf("expected one acquisition record per source per day, got %d", len(a.Acquisition))
	}
	if len(a.Retention) == 0 || len(a.Funnels) != 2 {
		t.Errorf("expected retention rows and 2 funnels, got %d and %d", len(a.Retention), len(a.Funnels))
	}

	clean, report := validation.SanitizeRecords(a)
	if report.Total() != 0 {
		t.Errorf("expected generated records to pass validation, skipped %v", report.ByKind())
	}
	if clean.Len() != a.Len() {
		t.Errorf("expected %d records after sanitising, got %d", a.Len(), clean.Len())
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in       time.Time
		expected string
	}{
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{time.Date(2024, 3, 1, 8, 15, 0, 0, time.UTC), "2024-03-01T08:15:00Z"},
		{time.Date(2024, 3, 1, 2, 0, 0, 0, time.FixedZone("CET", 3600)), "2024-03-01T01:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := formatDate(tt.in); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
