// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
)

// LoadRecords reads every record family for one refresh cycle.
// Rows come back in a stable order so repeated loads compose identically.
func (db *DB) LoadRecords(ctx context.Context) (models.RecordSet, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var rs models.RecordSet
	var err error

	if rs.Revenue, err = db.LoadRevenue(ctx); err != nil {
		return models.RecordSet{}, err
	}
	if rs.Acquisition, err = db.LoadAcquisition(ctx); err != nil {
		return models.RecordSet{}, err
	}
	if rs.Engagement, err = db.LoadEngagement(ctx); err != nil {
		return models.RecordSet{}, err
	}
	if rs.Retention, err = db.LoadRetention(ctx); err != nil {
		return models.RecordSet{}, err
	}
	if rs.Funnels, err = db.LoadFunnels(ctx); err != nil {
		return models.RecordSet{}, err
	}

	return rs, nil
}

// queryRows runs a SELECT and hands every row to scan, recording query metrics.
func (db *DB) queryRows(ctx context.Context, table, query string, scan func(*sql.Rows) error) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", table, time.Since(start), err)
	}()

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		if err = scan(rows); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating %s rows: %w", table, err)
	}
	return nil
}

// LoadRevenue returns all revenue events ordered by time
func (db *DB) LoadRevenue(ctx context.Context) ([]models.RevenueRecord, error) {
	records := make([]models.RevenueRecord, 0)
	err := db.queryRows(ctx, tableRevenue,
		`SELECT occurred_at, amount, source, plan FROM revenue_events
		 ORDER BY occurred_at, source, plan, amount`,
		func(rows *sql.Rows) error {
			var r models.RevenueRecord
			var at time.Time
			var source, plan string
			if err := rows.Scan(&at, &r.Amount, &source, &plan); err != nil {
				return err
			}
			r.Date = formatDate(at)
			r.Source = models.RevenueSource(source)
			r.Plan = models.Plan(plan)
			records = append(records, r)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// LoadAcquisition returns all acquisition events ordered by time
func (db *DB) LoadAcquisition(ctx context.Context) ([]models.AcquisitionRecord, error) {
	records := make([]models.AcquisitionRecord, 0)
	err := db.queryRows(ctx, tableAcquisition,
		`SELECT occurred_at, new_users, source FROM acquisition_events
		 ORDER BY occurred_at, source, new_users`,
		func(rows *sql.Rows) error {
			var r models.AcquisitionRecord
			var at time.Time
			var source string
			if err := rows.Scan(&at, &r.NewUsers, &source); err != nil {
				return err
			}
			r.Date = formatDate(at)
			r.Source = models.AcquisitionSource(source)
			records = append(records, r)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// LoadEngagement returns all engagement samples ordered by time
func (db *DB) LoadEngagement(ctx context.Context) ([]models.EngagementRecord, error) {
	records := make([]models.EngagementRecord, 0)
	err := db.queryRows(ctx, tableEngagement,
		`SELECT user_id, occurred_at, average_session_duration FROM engagement_samples
		 ORDER BY occurred_at, user_id, average_session_duration`,
		func(rows *sql.Rows) error {
			var r models.EngagementRecord
			var at time.Time
			if err := rows.Scan(&r.UserID, &at, &r.AverageSessionDuration); err != nil {
				return err
			}
			r.Date = formatDate(at)
			records = append(records, r)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// LoadRetention returns all retention rows ordered by cohort and period.
// Duplicate (cohort, period) rows are returned as stored; the engine merges them.
func (db *DB) LoadRetention(ctx context.Context) ([]models.RetentionRecord, error) {
	records := make([]models.RetentionRecord, 0)
	err := db.queryRows(ctx, tableRetention,
		`SELECT cohort, period, total_users, active_users FROM retention_cohorts
		 ORDER BY cohort, period, total_users, active_users`,
		func(rows *sql.Rows) error {
			var r models.RetentionRecord
			if err := rows.Scan(&r.Cohort, &r.Period, &r.TotalUsers, &r.ActiveUsers); err != nil {
				return err
			}
			records = append(records, r)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// LoadFunnels returns every funnel with its stages in position order
func (db *DB) LoadFunnels(ctx context.Context) ([]models.Funnel, error) {
	funnels := make([]models.Funnel, 0)
	err := db.queryRows(ctx, tableFunnel,
		`SELECT funnel, stage, users FROM funnel_stages ORDER BY funnel, position`,
		func(rows *sql.Rows) error {
			var name string
			var stage models.ConversionStage
			if err := rows.Scan(&name, &stage.Name, &stage.Users); err != nil {
				return err
			}
			if n := len(funnels); n == 0 || funnels[n-1].Name != name {
				funnels = append(funnels, models.Funnel{Name: name})
			}
			last := &funnels[len(funnels)-1]
			last.Stages = append(last.Stages, stage)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return funnels, nil
}

// RecordCounts returns the number of stored rows per record kind.
// Funnels are counted by funnel, not by stage.
func (db *DB) RecordCounts(ctx context.Context) (map[string]int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	queries := []struct {
		kind  models.RecordKind
		query string
	}{
		{models.KindRevenue, "SELECT COUNT(*) FROM revenue_events"},
		{models.KindAcquisition, "SELECT COUNT(*) FROM acquisition_events"},
		{models.KindEngagement, "SELECT COUNT(*) FROM engagement_samples"},
		{models.KindRetention, "SELECT COUNT(*) FROM retention_cohorts"},
		{models.KindFunnel, "SELECT COUNT(DISTINCT funnel) FROM funnel_stages"},
	}

	counts := make(map[string]int, len(queries))
	for _, q := range queries {
		var n int
		if err := db.conn.QueryRowContext(ctx, q.query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s records: %w", q.kind, err)
		}
		counts[string(q.kind)] = n
	}
	return counts, nil
}

// IsEmpty reports whether no records of any kind are stored.
func (db *DB) IsEmpty(ctx context.Context) (bool, error) {
	counts, err := db.RecordCounts(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range counts {
		if n > 0 {
			return false, nil
		}
	}
	return true, nil
}

// formatDate renders a stored timestamp back into the record date format.
// Midnight timestamps come back as plain calendar dates.
func formatDate(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
