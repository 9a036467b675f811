// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

// Package cache provides a generic in-process LRU cache with TTL.
//
// The API uses it for ad-hoc series responses, which require a full record
// load from DuckDB. Entries are keyed by request parameters and the current
// snapshot id, and the whole cache is purged whenever records are ingested.
package cache
