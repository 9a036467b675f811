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

	"github.com/tomtom215/meridian/internal/analytics"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
)

// withTx runs fn inside a transaction, rolling back on error.
func (db *DB) withTx(ctx context.Context, table string, fn func(*sql.Tx) error) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("insert", table, time.Since(start), err)
	}()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Str("table", table).
					Msg("Failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertBatch prepares query once and executes it for every row produced by args.
func (db *DB) insertBatch(ctx context.Context, table, query string, n int, args func(i int) ([]any, error)) (int, error) {
	if n == 0 {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err := db.withTx(ctx, table, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
		}
		defer closeQuietly(stmt)

		for i := 0; i < n; i++ {
			row, err := args(i)
			if err != nil {
				return fmt.Errorf("%s row %d: %w", table, i, err)
			}
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("failed to insert %s row %d: %w", table, i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// parseRecordDate converts a validated record date into a timestamp
func parseRecordDate(s string) (time.Time, error) {
	t, ok := analytics.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}
	return t.UTC(), nil
}

// InsertRevenue stores revenue events. Records must already be validated.
func (db *DB) InsertRevenue(ctx context.Context, records []models.RevenueRecord) (int, error) {
	return db.insertBatch(ctx, tableRevenue,
		`INSERT INTO revenue_events (occurred_at, amount, source, plan) VALUES (?, ?, ?, ?)`,
		len(records), func(i int) ([]any, error) {
			r := records[i]
			at, err := parseRecordDate(r.Date)
			if err != nil {
				return nil, err
			}
			return []any{at, r.Amount, string(r.Source), string(r.Plan)}, nil
		})
}

// InsertAcquisition stores acquisition events. Records must already be validated.
func (db *DB) InsertAcquisition(ctx context.Context, records []models.AcquisitionRecord) (int, error) {
	return db.insertBatch(ctx, tableAcquisition,
		`INSERT INTO acquisition_events (occurred_at, new_users, source) VALUES (?, ?, ?)`,
		len(records), func(i int) ([]any, error) {
			r := records[i]
			at, err := parseRecordDate(r.Date)
			if err != nil {
				return nil, err
			}
			return []any{at, r.NewUsers, string(r.Source)}, nil
		})
}

// InsertEngagement stores engagement samples. Records must already be validated.
func (db *DB) InsertEngagement(ctx context.Context, records []models.EngagementRecord) (int, error) {
	return db.insertBatch(ctx, tableEngagement,
		`INSERT INTO engagement_samples (user_id, occurred_at, average_session_duration) VALUES (?, ?, ?)`,
		len(records), func(i int) ([]any, error) {
			r := records[i]
			at, err := parseRecordDate(r.Date)
			if err != nil {
				return nil, err
			}
			return []any{r.UserID, at, r.AverageSessionDuration}, nil
		})
}

// InsertRetention stores retention rows. Records must already be validated.
func (db *DB) InsertRetention(ctx context.Context, records []models.RetentionRecord) (int, error) {
	return db.insertBatch(ctx, tableRetention,
		`INSERT INTO retention_cohorts (cohort, period, total_users, active_users) VALUES (?, ?, ?, ?)`,
		len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.Cohort, r.Period, r.TotalUsers, r.ActiveUsers}, nil
		})
}

// ReplaceFunnels stores funnels, replacing any existing stages of a funnel
// with the same name. Returns the number of funnels written.
func (db *DB) ReplaceFunnels(ctx context.Context, funnels []models.Funnel) (int, error) {
	if len(funnels) == 0 {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	written := 0
	err := db.withTx(ctx, tableFunnel, func(tx *sql.Tx) error {
		for _, f := range funnels {
			if _, err := tx.ExecContext(ctx, `DELETE FROM funnel_stages WHERE funnel = ?`, f.Name); err != nil {
				return fmt.Errorf("failed to clear funnel %q: %w", f.Name, err)
			}
			for pos, stage := range f.Stages {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO funnel_stages (funnel, position, stage, users) VALUES (?, ?, ?, ?)`,
					f.Name, pos, stage.Name, stage.Users); err != nil {
					return fmt.Errorf("failed to insert funnel %q stage %d: %w", f.Name, pos, err)
				}
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// InsertRecordSet stores every family of rs and returns per-kind counts.
func (db *DB) InsertRecordSet(ctx context.Context, rs *models.RecordSet) (map[string]int, error) {
	counts := make(map[string]int, len(models.AllRecordKinds))

	var err error
	if counts[string(models.KindRevenue)], err = db.InsertRevenue(ctx, rs.Revenue); err != nil {
		return counts, err
	}
	if counts[string(models.KindAcquisition)], err = db.InsertAcquisition(ctx, rs.Acquisition); err != nil {
		return counts, err
	}
	if counts[string(models.KindEngagement)], err = db.InsertEngagement(ctx, rs.Engagement); err != nil {
		return counts, err
	}
	if counts[string(models.KindRetention)], err = db.InsertRetention(ctx, rs.Retention); err != nil {
		return counts, err
	}
	if counts[string(models.KindFunnel)], err = db.ReplaceFunnels(ctx, rs.Funnels); err != nil {
		return counts, err
	}
	return counts, nil
}
