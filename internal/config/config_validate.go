// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package config

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/meridian/internal/analytics"
	"github.com/tomtom215/meridian/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateRefresh(); err != nil {
		return err
	}

	if err := c.validateDashboard(); err != nil {
		return err
	}

	if err := c.validateSnapshots(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	if c.Database.CheckpointInterval < 0 {
		return fmt.Errorf("DUCKDB_CHECKPOINT_INTERVAL must be non-negative")
	}
	if c.Database.SeedMockData && c.Database.SeedDays < 1 {
		return fmt.Errorf("SEED_DAYS must be at least 1 when SEED_MOCK_DATA=true")
	}
	return nil
}

// Refresh interval bounds
const (
	minRefreshInterval = time.Second
	maxRefreshInterval = 24 * time.Hour
)

func (c *Config) validateRefresh() error {
	r := c.Refresh
	if r.Interval < minRefreshInterval || r.Interval > maxRefreshInterval {
		return fmt.Errorf("REFRESH_INTERVAL must be between %v and %v", minRefreshInterval, maxRefreshInterval)
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("REFRESH_TIMEOUT must be positive")
	}
	if r.ManualInterval <= 0 {
		return fmt.Errorf("REFRESH_MANUAL_INTERVAL must be positive")
	}
	if r.ManualBurst < 1 {
		return fmt.Errorf("REFRESH_MANUAL_BURST must be at least 1")
	}
	if r.BreakerMinRequests < 1 {
		return fmt.Errorf("REFRESH_BREAKER_MIN_REQUESTS must be at least 1")
	}
	if r.BreakerFailureRatio <= 0 || r.BreakerFailureRatio > 1 {
		return fmt.Errorf("REFRESH_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if r.BreakerTimeout <= 0 {
		return fmt.Errorf("REFRESH_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDashboard() error {
	d := c.Dashboard
	if _, err := analytics.ParsePeriod(d.Period); err != nil {
		return fmt.Errorf("DASHBOARD_PERIOD is invalid: %w", err)
	}
	if d.MovingAverageWindow < 1 {
		return fmt.Errorf("MOVING_AVERAGE_WINDOW must be at least 1")
	}
	if d.LTVFallbackMonths <= 0 || math.IsInf(d.LTVFallbackMonths, 0) || math.IsNaN(d.LTVFallbackMonths) {
		return fmt.Errorf("LTV_FALLBACK_MONTHS must be a positive number")
	}
	if err := validateOverride("MRR_OVERRIDE", d.MRR); err != nil {
		return err
	}
	if err := validateOverride("CHURN_RATE_OVERRIDE", d.ChurnRate); err != nil {
		return err
	}
	if d.TotalUsers != nil && *d.TotalUsers < 0 {
		return fmt.Errorf("TOTAL_USERS_OVERRIDE must be non-negative")
	}
	return c.validateKPITargets()
}

func validateOverride(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return fmt.Errorf("%s must be a non-negative number", name)
	}
	return nil
}

// validateKPITargets rejects duplicate or unknown KPI ids. Unknown ids are
// tolerated by the composer, but a typo in static configuration is an error.
func (c *Config) validateKPITargets() error {
	seen := make(map[string]bool, len(c.Dashboard.KPITargets))
	for i, t := range c.Dashboard.KPITargets {
		if t.ID == "" {
			return fmt.Errorf("dashboard.kpi_targets[%d]: id is required", i)
		}
		if !analytics.IsKnownKPI(t.ID) {
			return fmt.Errorf("dashboard.kpi_targets[%d]: unknown KPI %q", i, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("dashboard.kpi_targets[%d]: duplicate KPI %q", i, t.ID)
		}
		if math.IsNaN(t.Target) || math.IsInf(t.Target, 0) {
			return fmt.Errorf("dashboard.kpi_targets[%d]: target must be finite", i)
		}
		seen[t.ID] = true
	}
	return nil
}

func (c *Config) validateSnapshots() error {
	if !c.Snapshots.Enabled {
		return nil
	}
	if !c.Snapshots.InMemory && c.Snapshots.Path == "" {
		return fmt.Errorf("SNAPSHOTS_PATH is required when snapshots are persisted to disk")
	}
	if c.Snapshots.HistorySize < 1 {
		return fmt.Errorf("SNAPSHOTS_HISTORY_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.SlowRequestThreshold < 0 {
		return fmt.Errorf("HTTP_SLOW_REQUEST_THRESHOLD must be non-negative")
	}
	if c.Server.LatencyWindow < 1 {
		return fmt.Errorf("HTTP_LATENCY_WINDOW must be at least 1")
	}
	if c.Server.SeriesCacheSize < 1 {
		return fmt.Errorf("SERIES_CACHE_SIZE must be at least 1")
	}
	if c.Server.SeriesCacheTTL <= 0 {
		return fmt.Errorf("SERIES_CACHE_TTL must be positive")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	if c.Security.MaxBodyBytes < 1 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	return c.validateRateLimits()
}

// HasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogFormats defines the allowed log output formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
