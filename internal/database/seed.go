// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package database

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/models"
)

// seedNamespace derives stable mock user ids
var seedNamespace = uuid.MustParse("6f1c9a52-3d0e-4b8a-9c57-2e4f1a7b8d90")

// Mock data parameters
const (
	seedUserPool       = 60
	seedActivePerDay   = 20
	seedMaxCohorts     = 6
	seedMaxCohortWeeks = 12
)

var seedAcquisitionBase = map[models.AcquisitionSource]float64{
	models.AcquisitionOrganic:  14,
	models.AcquisitionPaid:     9,
	models.AcquisitionReferral: 4,
	models.AcquisitionSocial:   6,
	models.AcquisitionDirect:   3,
}

var seedPlanPrices = []struct {
	plan  models.Plan
	price float64
}{
	{models.PlanBasic, 29},
	{models.PlanProfessional, 99},
	{models.PlanEnterprise, 499},
}

// SeedMockData fills an empty store with deterministic demo records covering
// cfg.SeedDays days before now. A non-empty store is left untouched.
func (db *DB) SeedMockData(ctx context.Context, now time.Time) error {
	empty, err := db.IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("failed to check store before seeding: %w", err)
	}
	if !empty {
		logging.Info().Msg("Record store already has data, skipping mock data seeding")
		return nil
	}

	rs := GenerateMockRecords(db.cfg.SeedDays, db.cfg.SeedValue, now)
	counts, err := db.InsertRecordSet(ctx, &rs)
	if err != nil {
		return fmt.Errorf("failed to seed mock data: %w", err)
	}

	logging.Info().
		Int("revenue", counts[string(models.KindRevenue)]).
		Int("acquisition", counts[string(models.KindAcquisition)]).
		Int("engagement", counts[string(models.KindEngagement)]).
		Int("retention", counts[string(models.KindRetention)]).
		Int("funnels", counts[string(models.KindFunnel)]).
		Msg("Seeded record store with mock data")
	return nil
}

// GenerateMockRecords builds a record set for the days days before now.
// The same days, seed and calendar date always produce the same records.
func GenerateMockRecords(days int, seed int64, now time.Time) models.RecordSet {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // demo data, not security sensitive
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -days)

	users := make([]string, seedUserPool)
	for i := range users {
		users[i] = uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("user-%d", i))).String()
	}

	rs := models.RecordSet{}
	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		date := day.Format("2006-01-02")
		growth := 1 + float64(d)*0.01

		for _, source := range []models.AcquisitionSource{
			models.AcquisitionOrganic, models.AcquisitionPaid, models.AcquisitionReferral,
			models.AcquisitionSocial, models.AcquisitionDirect,
		} {
			n := int(math.Round(seedAcquisitionBase[source]*growth + rng.NormFloat64()*2))
			if n < 0 {
				n = 0
			}
			rs.Acquisition = append(rs.Acquisition, models.AcquisitionRecord{Date: date, NewUsers: n, Source: source})
		}

		subscriptions := 3 + rng.Intn(4)
		for i := 0; i < subscriptions; i++ {
			p := seedPlanPrices[rng.Intn(len(seedPlanPrices))]
			rs.Revenue = append(rs.Revenue, models.RevenueRecord{
				Date: date, Amount: p.price * growth, Source: models.RevenueSubscription, Plan: p.plan,
			})
		}
		if rng.Float64() < 0.3 {
			rs.Revenue = append(rs.Revenue, models.RevenueRecord{
				Date: date, Amount: 70, Source: models.RevenueUpgrade, Plan: models.PlanProfessional,
			})
		}
		if rng.Float64() < 0.2 {
			rs.Revenue = append(rs.Revenue, models.RevenueRecord{
				Date: date, Amount: 15, Source: models.RevenueAddon, Plan: models.PlanBasic,
			})
		}
		if rng.Float64() < 0.4 {
			rs.Revenue = append(rs.Revenue, models.RevenueRecord{
				Date: date, Amount: 49, Source: models.RevenueOneTime, Plan: models.PlanTrial,
			})
		}

		for _, idx := range rng.Perm(seedUserPool)[:seedActivePerDay] {
			minutes := math.Max(1, 18+rng.NormFloat64()*7)
			rs.Engagement = append(rs.Engagement, models.EngagementRecord{
				UserID: users[idx], Date: date, AverageSessionDuration: math.Round(minutes*10) / 10,
			})
		}
	}

	rs.Retention = mockRetention(rng, start, end)
	rs.Funnels = mockFunnels(rng, days)
	return rs
}

// mockRetention emits weekly retention rows for each month that started inside the window.
func mockRetention(rng *rand.Rand, start, end time.Time) []models.RetentionRecord {
	records := make([]models.RetentionRecord, 0)
	month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if month.Before(start) {
		month = month.AddDate(0, 1, 0)
	}

	for cohorts := 0; month.Before(end) && cohorts < seedMaxCohorts; cohorts++ {
		weeks := int(end.Sub(month).Hours() / (24 * 7))
		if weeks > seedMaxCohortWeeks {
			weeks = seedMaxCohortWeeks
		}
		size := 200 + rng.Intn(300)
		decay := 0.80 + rng.Float64()*0.1

		for period := 0; period <= weeks; period++ {
			active := size
			if period > 0 {
				rate := 0.25 + 0.75*math.Pow(decay, float64(period))
				active = int(math.Round(float64(size) * rate))
			}
			records = append(records, models.RetentionRecord{
				Cohort: month.Format("2006-01"), Period: period, TotalUsers: size, ActiveUsers: active,
			})
		}
		month = month.AddDate(0, 1, 0)
	}
	return records
}

// mockFunnels emits one onboarding and one expansion funnel sized to the window.
func mockFunnels(rng *rand.Rand, days int) []models.Funnel {
	visits := 400*days + rng.Intn(1000)
	onboarding := []float64{1, 0.22, 0.09, 0.035}
	expansion := []float64{1, 0.4, 0.12}

	build := func(name string, top int, ratios []float64, names []string) models.Funnel {
		f := models.Funnel{Name: name, Stages: make([]models.ConversionStage, len(ratios))}
		for i, r := range ratios {
			f.Stages[i] = models.ConversionStage{Name: names[i], Users: int(float64(top) * r)}
		}
		return f
	}

	return []models.Funnel{
		build("expansion", visits/20, expansion, []string{"basic", "professional", "enterprise"}),
		build("onboarding", visits, onboarding, []string{"visit", "signup", "trial", "paid"}),
	}
}
