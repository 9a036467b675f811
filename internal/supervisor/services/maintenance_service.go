// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Checkpointer flushes the record store's write-ahead log to its data file.
// Implemented by *database.DB.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// checkpointTimeout bounds a single CHECKPOINT
const checkpointTimeout = 2 * time.Minute

// MaintenanceService periodically checkpoints the DuckDB record store so
// ingested records reach the data file without waiting for shutdown.
type MaintenanceService struct {
	db       Checkpointer
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewMaintenanceService creates a new maintenance service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(db Checkpointer, interval time.Duration, logger zerolog.Logger) *MaintenanceService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MaintenanceService{
		db:       db,
		interval: interval,
		logger:   logger.With().Str("service", "maintenance").Logger(),
		name:     "database-maintenance",
	}
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("checkpoint_interval", s.interval).Msg("maintenance service starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("maintenance service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.checkpoint(ctx)
		}
	}
}

// checkpoint runs one CHECKPOINT. Failures are logged and retried on the next tick.
func (s *MaintenanceService) checkpoint(ctx context.Context) {
	cpCtx, cancel := context.WithTimeout(ctx, checkpointTimeout)
	defer cancel()

	start := time.Now()
	if err := s.db.Checkpoint(cpCtx); err != nil {
		s.logger.Warn().Err(err).Msg("scheduled checkpoint failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("checkpoint complete")
}

// String returns the service name for logging.
func (s *MaintenanceService) String() string {
	return s.name
}
