// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package database

import (
	"context"
	"fmt"
	"time"
)

// Table names, one per record family.
const (
	tableRevenue     = "revenue_events"
	tableAcquisition = "acquisition_events"
	tableEngagement  = "engagement_samples"
	tableRetention   = "retention_cohorts"
	tableFunnel      = "funnel_stages"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the record tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the table creation SQL statements.
// Dates are kept as TIMESTAMP; date-only input is stored at midnight UTC.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS revenue_events (
			occurred_at TIMESTAMP NOT NULL,
			amount DOUBLE NOT NULL,
			source VARCHAR NOT NULL,
			plan VARCHAR NOT NULL,
			ingested_at TIMESTAMP DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS acquisition_events (
			occurred_at TIMESTAMP NOT NULL,
			new_users INTEGER NOT NULL,
			source VARCHAR NOT NULL,
			ingested_at TIMESTAMP DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS engagement_samples (
			user_id VARCHAR NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			average_session_duration DOUBLE NOT NULL,
			ingested_at TIMESTAMP DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS retention_cohorts (
			cohort VARCHAR NOT NULL,
			period INTEGER NOT NULL,
			total_users INTEGER NOT NULL,
			active_users INTEGER NOT NULL,
			ingested_at TIMESTAMP DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS funnel_stages (
			funnel VARCHAR NOT NULL,
			position INTEGER NOT NULL,
			stage VARCHAR NOT NULL,
			users INTEGER NOT NULL,
			PRIMARY KEY (funnel, position)
		)`,
	}
}

// createIndexes creates lookup indexes for the ordered loads
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_revenue_occurred ON revenue_events(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_acquisition_occurred ON acquisition_events(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_engagement_occurred ON engagement_samples(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_retention_cohort ON retention_cohorts(cohort, period)`,
	}
	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
