// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package refresh

import "errors"

var (
	// ErrThrottled is returned by TriggerRefresh when manual refreshes arrive
	// faster than the configured rate.
	ErrThrottled = errors.New("refresh throttled")

	// ErrAlreadyRunning is returned by Start on a running manager.
	ErrAlreadyRunning = errors.New("refresh manager is already running")

	// ErrNotRunning is returned by Stop on a stopped manager.
	ErrNotRunning = errors.New("refresh manager is not running")
)

// Refresh stages reported in meridian_refresh_failures_total
const (
	StageFetch       = "fetch"
	StageBreakerOpen = "breaker_open"
	StageTimeout     = "timeout"
)

// StageError attaches the refresh stage that failed to an error.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// RefreshStage implements metrics.Stage.
func (e *StageError) RefreshStage() string {
	return e.Stage
}
