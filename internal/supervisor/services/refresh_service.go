// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package services

import (
	"context"
	"fmt"
)

// StartStopManager matches the refresh.Manager lifecycle.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// RefreshService wraps the dashboard refresh manager as a supervised service.
//
// It adapts the Start/Stop lifecycle to suture's Serve pattern:
//  1. Calls Start(ctx) to restore the last snapshot and begin the refresh loop
//  2. Waits for context cancellation
//  3. Calls Stop() which waits for an in-flight refresh
type RefreshService struct {
	manager StartStopManager
	name    string
}

// NewRefreshService creates a new refresh service wrapper.
func NewRefreshService(manager StartStopManager) *RefreshService {
	return &RefreshService{
		manager: manager,
		name:    "refresh-manager",
	}
}

// Serve implements suture.Service.
//
// If Start() fails, the error is returned immediately, causing suture to
// restart the service according to its backoff policy.
func (s *RefreshService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("refresh manager start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("refresh manager stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *RefreshService) String() string {
	return s.name
}
