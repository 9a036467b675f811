// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package refresh keeps the dashboard snapshot current.

Manager runs the refresh cycle on a fixed interval and on demand:

 1. load records through the RecordSource (normally a CircuitBreakerReader
    around the DuckDB store) with a per-cycle timeout
 2. drop malformed records with validation.SanitizeRecords
 3. compose a snapshot with analytics.Compose
 4. publish it atomically, persist it to the snapshot store and broadcast
    a snapshot_updated message to WebSocket clients

A failed cycle is logged and counted in meridian_refresh_failures_total by
stage (fetch, breaker_open, timeout); the previously published snapshot stays
in place. On Start the manager restores the last persisted snapshot so the
API can answer before the first cycle completes.

Manual refreshes (TriggerRefresh) are throttled with a token bucket from
golang.org/x/time/rate and return ErrThrottled when over the limit.

# Usage

	reader := refresh.NewCircuitBreakerReader(db, refresh.BreakerSettingsFromConfig(&cfg.Refresh))
	mgr := refresh.NewManager(reader, snapshotStore, wsHub, cfg)
	tree.AddMessagingService(services.NewRefreshService(mgr))

	snap := mgr.Snapshot() // nil until the first refresh or restore
*/
package refresh
