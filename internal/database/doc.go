// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package database is the DuckDB record store behind the dashboard.

It keeps the five raw record families the analytics engine consumes, one table
each:

  - revenue_events: occurred_at, amount, source, plan
  - acquisition_events: occurred_at, new_users, source
  - engagement_samples: user_id, occurred_at, average_session_duration
  - retention_cohorts: cohort (YYYY-MM), period (weeks since signup), total_users, active_users
  - funnel_stages: funnel, position, stage, users

LoadRecords reads all of them into a models.RecordSet in a stable order. The
store does no aggregation; every derived number comes from the analytics package.

Writes go through batched, transactional inserts (InsertRecordSet and the
per-kind Insert methods). Callers validate records first; the store only
rejects rows whose dates cannot be parsed. ReplaceFunnels swaps a funnel's
stages as a unit.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	if cfg.Database.SeedMockData {
	    if err := db.SeedMockData(ctx, time.Now()); err != nil {
	        return err
	    }
	}
	records, err := db.LoadRecords(ctx)

Use Path ":memory:" for an ephemeral store in tests.
*/
package database
