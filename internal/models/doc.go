// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package models provides the data structures shared by the record store, the
analytics engine, the refresh loop and the HTTP API.

# Overview

The package defines three groups of types:
  - Records: the raw business records the dashboard is derived from
  - Series: intermediate analytics results (chart points, trends, funnels)
  - Snapshots: the composed dashboard published to clients

# Records

Five record families feed the dashboard. Each carries validate tags checked
by the validation package before it reaches the engine:

	RevenueRecord      date, amount, source, plan
	AcquisitionRecord  date, newUsers, source
	EngagementRecord   userId, date, averageSessionDuration
	RetentionRecord    cohort (YYYY-MM), period (weeks), totalUsers, activeUsers
	Funnel             name, ordered stages of {name, users}

Dates are calendar dates in YYYY-MM-DD form and stay strings until the engine
buckets them. A RecordSet bundles one refresh cycle's records:

	import "github.com/tomtom215/meridian/internal/models"

	rs := models.RecordSet{
	    Revenue: []models.RevenueRecord{
	        {Date: "2026-03-01", Amount: 99, Source: models.RevenueSubscription, Plan: models.PlanBasic},
	    },
	    Acquisition: []models.AcquisitionRecord{
	        {Date: "2026-03-01", NewUsers: 12, Source: models.AcquisitionOrganic},
	    },
	}

# Snapshots

DashboardSnapshot is immutable once published. The refresh manager builds a
new one on every cycle and swaps it in atomically; readers never see a
partially composed dashboard. SnapshotSummary is the compact form kept in
the snapshot history.

# JSON Serialization

All types use camelCase JSON field names, matching what the administration
console binds to:

	{
	  "overview": {"totalRevenue": 1500, "totalUsers": 120, "mrr": 900},
	  "kpiTargets": [{"id": "mrr", "value": 900, "target": 1000, "trend": "up"}]
	}

# Thread Safety

Model types carry no synchronization. Snapshots are safe to share because
they are never modified after publication.
*/
package models
