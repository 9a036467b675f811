// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package refresh

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
)

// RecordSource loads the raw records a snapshot is composed from.
// Implemented by *database.DB.
type RecordSource interface {
	LoadRecords(ctx context.Context) (models.RecordSet, error)
}

// BreakerName labels the record store breaker in logs and metrics.
const BreakerName = "record-store"

// BreakerSettings configure CircuitBreakerReader.
type BreakerSettings struct {
	Name         string
	MinRequests  uint32        // Requests in a window before the ratio is considered
	FailureRatio float64       // Trip when failures/requests >= ratio
	Interval     time.Duration // Closed-state count window
	Timeout      time.Duration // Open -> half-open delay
}

// BreakerSettingsFromConfig derives breaker settings from the refresh config.
// The count window spans twice the time the scheduler needs to issue
// MinRequests refreshes, and never less than a minute.
func BreakerSettingsFromConfig(cfg *config.RefreshConfig) BreakerSettings {
	interval := 2 * time.Duration(cfg.BreakerMinRequests) * cfg.Interval
	if interval < time.Minute {
		interval = time.Minute
	}
	return BreakerSettings{
		Name:         BreakerName,
		MinRequests:  cfg.BreakerMinRequests,
		FailureRatio: cfg.BreakerFailureRatio,
		Interval:     interval,
		Timeout:      cfg.BreakerTimeout,
	}
}

// CircuitBreakerReader wraps a RecordSource with a circuit breaker so a
// failing record store is not hammered by every refresh.
//
// The breaker uses real time for its interval and timeout. Tests that need to
// exercise the open state should use a short Timeout rather than mocking time.
type CircuitBreakerReader struct {
	source RecordSource
	cb     *gobreaker.CircuitBreaker[models.RecordSet]
	name   string
}

// NewCircuitBreakerReader wraps source.
func NewCircuitBreakerReader(source RecordSource, s BreakerSettings) *CircuitBreakerReader {
	name := s.Name
	if name == "" {
		name = BreakerName
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[models.RecordSet](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // A single probe in half-open state; refreshes are serialized anyway
		Interval:    s.Interval,
		Timeout:     s.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRatio

			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		// A canceled refresh says nothing about store health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &CircuitBreakerReader{source: source, cb: cb, name: name}
}

// LoadRecords loads records through the breaker. When the circuit is open the
// returned error wraps gobreaker.ErrOpenState and reports the "breaker_open"
// refresh stage.
func (r *CircuitBreakerReader) LoadRecords(ctx context.Context) (models.RecordSet, error) {
	rs, err := r.cb.Execute(func() (models.RecordSet, error) {
		return r.source.LoadRecords(ctx)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "rejected").Inc()
			logging.Warn().Err(err).Str("breaker", r.name).Msg("[CIRCUIT BREAKER] Request rejected")
			return models.RecordSet{}, &StageError{Stage: StageBreakerOpen, Err: err}
		}

		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "failure").Inc()
		counts := r.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(r.name).Set(float64(counts.ConsecutiveFailures))
		return models.RecordSet{}, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(r.name).Set(0)
	return rs, nil
}

// State returns the breaker state as "closed", "half-open" or "open".
func (r *CircuitBreakerReader) State() string {
	return stateToString(r.cb.State())
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
