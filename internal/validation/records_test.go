// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package validation

import (
	"math"
	"testing"

	"github.com/tomtom215/meridian/internal/models"
)

func TestSanitizeRecords(t *testing.T) {
	in := models.RecordSet{
		Revenue: []models.RevenueRecord{
			{Date: "2024-01-01", Amount: 10, Source: models.RevenueSubscription, Plan: models.PlanBasic},
			{Date: "bad", Amount: 10, Source: models.RevenueSubscription, Plan: models.PlanBasic},
			{Date: "2024-01-02", Amount: math.Inf(1), Source: models.RevenueAddon, Plan: models.PlanBasic},
		},
		Acquisition: []models.AcquisitionRecord{
			{Date: "2024-01-01", NewUsers: 3, Source: models.AcquisitionDirect},
		},
		Engagement: []models.EngagementRecord{
			{UserID: "", Date: "2024-01-01", AverageSessionDuration: 10},
		},
		Retention: []models.RetentionRecord{
			{Cohort: "2024-01", Period: 0, TotalUsers: 10, ActiveUsers: 10},
		},
		Funnels: []models.Funnel{
			{Name: "ok", Stages: []models.ConversionStage{{Name: "a", Users: 10}}},
			{Name: "broken", Stages: []models.ConversionStage{{Name: "a", Users: -1}}},
		},
	}

	out, report := SanitizeRecords(in)

	if len(out.Revenue) != 1 || len(out.Acquisition) != 1 || len(out.Engagement) != 0 ||
		len(out.Retention) != 1 || len(out.Funnels) != 1 {
		t.Errorf("unexpected sanitised set: %+v", out)
	}
	if out.Funnels[0].Name != "ok" {
		t.Errorf("expected valid funnel kept, got %s", out.Funnels[0].Name)
	}
	if len(in.Revenue) != 3 {
		t.Error("SanitizeRecords should not modify its input")
	}

	if report.Total() != 4 {
		t.Errorf("expected 4 skipped records, got %d", report.Total())
	}

	byKind := report.ByKind()
	expected := map[string]int{"revenue": 2, "engagement": 1, "funnel": 1}
	for kind, want := range expected {
		if byKind[kind] != want {
			t.Errorf("%s: expected %d skipped, got %d", kind, want, byKind[kind])
		}
	}

	entries := report.Entries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 (kind, reason) buckets, got %d: %+v", len(entries), entries)
	}
	first := entries[0]
	if first.Kind != models.KindEngagement || first.Reason != "required" || first.Count != 1 {
		t.Errorf("unexpected first entry: %+v", first)
	}
}

func TestSanitizeRecords_Empty(t *testing.T) {
	out, report := SanitizeRecords(models.RecordSet{})
	if out.Revenue == nil || out.Funnels == nil {
		t.Error("expected non-nil empty slices")
	}
	if report.Total() != 0 || len(report.Entries()) != 0 {
		t.Error("expected empty report")
	}
}
