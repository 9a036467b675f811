// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package snapshots persists composed dashboard snapshots in BadgerDB.

The store keeps two things:

  - the latest snapshot, which the refresh manager restores on startup so the
    dashboard can be served before the first refresh completes
  - a bounded history of snapshots ordered by generation time

Keys:

	snapshot:latest                         latest snapshot (JSON)
	snapshot:history:<unix nanos>:<id>      history entry (JSON)
	snapshot:id:<id>                        id -> history key

History is pruned to SnapshotConfig.HistorySize on every Save, followed by a
value log GC pass for file-backed stores.

# Usage

	store, err := snapshots.Open(&cfg.Snapshots)
	if err != nil {
	    return err
	}
	defer store.Close()

	if err := store.Save(ctx, snap); err != nil {
	    logging.Warn().Err(err).Msg("Failed to persist snapshot")
	}
	recent, err := store.History(ctx, 10)
*/
package snapshots
