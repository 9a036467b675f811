// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"github.com/tomtom215/meridian/internal/models"
)

// AnalyzeFunnel computes per-stage conversion and dropoff for an ordered funnel.
//
// Conversion is relative to the first stage and dropoff is relative to the
// previous stage; a zero denominator yields 0. The first stage is defined to
// convert at 100 with no dropoff.
// OverallConversion is the conversion of the last stage.
//
// Stage counts are not required to be non-increasing. A stage with more users
// than its predecessor gets a negative dropoff and is listed in NonMonotonic.
func AnalyzeFunnel(stages []models.ConversionStage) models.FunnelResult {
	result := models.FunnelResult{Stages: make([]models.StageResult, 0, len(stages))}
	if len(stages) == 0 {
		return result
	}

	base := float64(stages[0].Users)
	for i, stage := range stages {
		sr := models.StageResult{
			Name:           stage.Name,
			Users:          stage.Users,
			ConversionRate: ratioPercent(float64(stage.Users), base),
		}
		if i == 0 {
			sr.ConversionRate = 100
		} else {
			prev := stages[i-1].Users
			sr.DropoffRate = ratioPercent(float64(prev-stage.Users), float64(prev))
			if stage.Users > prev {
				result.NonMonotonic = append(result.NonMonotonic, stage.Name)
			}
		}
		result.Stages = append(result.Stages, sr)
	}

	result.OverallConversion = result.Stages[len(result.Stages)-1].ConversionRate
	return result
}

// AnalyzeFunnels analyses each funnel and returns the results in input order
// together with the mean overall conversion of the non-empty funnels.
func AnalyzeFunnels(funnels []models.Funnel) ([]models.FunnelResult, float64) {
	results := make([]models.FunnelResult, 0, len(funnels))
	var overall []float64
	for _, f := range funnels {
		r := AnalyzeFunnel(f.Stages)
		r.Name = f.Name
		results = append(results, r)
		if len(f.Stages) > 0 {
			overall = append(overall, r.OverallConversion)
		}
	}
	return results, average(overall)
}
