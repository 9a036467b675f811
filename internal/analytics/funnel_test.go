// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"testing"

	"github.com/tomtom215/meridian/internal/models"
)

func stages(users ...int) []models.ConversionStage {
	names := []string{"visit", "signup", "trial", "paid", "renewal"}
	out := make([]models.ConversionStage, len(users))
	for i, u := range users {
		out[i] = models.ConversionStage{Name: names[i%len(names)], Users: u}
	}
	return out
}

func TestAnalyzeFunnel(t *testing.T) {
	tests := []struct {
		name             string
		stages           []models.ConversionStage
		wantConversion   []float64
		wantDropoff      []float64
		wantOverall      float64
		wantNonMonotonic []string
	}{
		{
			name:           "monotonic",
			stages:         stages(1000, 400, 100),
			wantConversion: []float64{100, 40, 10},
			wantDropoff:    []float64{0, 60, 75},
			wantOverall:    10,
		},
		{
			name:           "single stage",
			stages:         stages(50),
			wantConversion: []float64{100},
			wantDropoff:    []float64{0},
			wantOverall:    100,
		},
		{
			name:           "zero first stage",
			stages:         stages(0, 0),
			wantConversion: []float64{100, 0},
			wantDropoff:    []float64{0, 0},
			wantOverall:    0,
		},
		{
			name:             "non-monotonic surfaced",
			stages:           stages(100, 150, 75),
			wantConversion:   []float64{100, 150, 75},
			wantDropoff:      []float64{0, -50, 50},
			wantOverall:      75,
			wantNonMonotonic: []string{"signup"},
		},
		{
			name:           "zero previous stage",
			stages:         stages(100, 0, 0),
			wantConversion: []float64{100, 0, 0},
			wantDropoff:    []float64{0, 100, 0},
			wantOverall:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeFunnel(tt.stages)
			if len(got.Stages) != len(tt.stages) {
				t.Fatalf("expected %d stages, got %d", len(tt.stages), len(got.Stages))
			}

			conversion := make([]float64, len(got.Stages))
			dropoff := make([]float64, len(got.Stages))
			for i, s := range got.Stages {
				conversion[i] = s.ConversionRate
				dropoff[i] = s.DropoffRate
				if s.Name != tt.stages[i].Name || s.Users != tt.stages[i].Users {
					t.Errorf("stage %d: expected %s/%d, got %s/%d",
						i, tt.stages[i].Name, tt.stages[i].Users, s.Name, s.Users)
				}
			}
			checkFloats(t, "conversion", conversion, tt.wantConversion)
			checkFloats(t, "dropoff", dropoff, tt.wantDropoff)
			checkFloat(t, "overall", got.OverallConversion, tt.wantOverall)

			if len(got.NonMonotonic) != len(tt.wantNonMonotonic) {
				t.Fatalf("expected non-monotonic %v, got %v", tt.wantNonMonotonic, got.NonMonotonic)
			}
			for i := range tt.wantNonMonotonic {
				if got.NonMonotonic[i] != tt.wantNonMonotonic[i] {
					t.Errorf("expected non-monotonic %v, got %v", tt.wantNonMonotonic, got.NonMonotonic)
				}
			}
		})
	}
}

func TestAnalyzeFunnel_Empty(t *testing.T) {
	got := AnalyzeFunnel(nil)
	if got.Stages == nil || len(got.Stages) != 0 {
		t.Errorf("expected empty non-nil stages, got %v", got.Stages)
	}
	if got.OverallConversion != 0 {
		t.Errorf("expected overall 0, got %v", got.OverallConversion)
	}
}

func TestAnalyzeFunnels(t *testing.T) {
	funnels := []models.Funnel{
		{Name: "signup", Stages: stages(1000, 400, 100)},
		{Name: "empty"},
		{Name: "upgrade", Stages: stages(200, 60)},
	}

	results, avg := AnalyzeFunnels(funnels)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Name != "signup" || results[2].Name != "upgrade" {
		t.Errorf("results should keep input order and names: %+v", results)
	}
	checkFloat(t, "average overall", avg, 20)
}
