// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/meridian/internal/models"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Data:
//     - Database: DuckDB record store (path, memory, mock data seeding)
//     - Snapshots: BadgerDB persistence of composed dashboards
//
//  2. Engine:
//     - Refresh: Polling interval, per-cycle timeout, circuit breaker
//     - Dashboard: Bucketing period, smoothing window, KPI targets
//
//  3. Serving:
//     - Server: HTTP listener
//     - Security: CORS and rate limiting
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Refresh   RefreshConfig   `koanf:"refresh"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Snapshots SnapshotConfig  `koanf:"snapshots"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds DuckDB record store settings
type DatabaseConfig struct {
	Path      string `koanf:"path"` // ":memory:" runs without a file
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)

	CheckpointInterval time.Duration `koanf:"checkpoint_interval"` // 0 disables periodic CHECKPOINT

	SeedMockData bool  `koanf:"seed_mock_data"` // Seed deterministic demo records into an empty store
	SeedDays     int   `koanf:"seed_days"`
	SeedValue    int64 `koanf:"seed_value"`
}

// RefreshConfig holds the dashboard refresh loop settings
type RefreshConfig struct {
	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout"` // Upper bound for one fetch + compose cycle

	// Manual refreshes (POST /api/v1/dashboard/refresh) are throttled by a token bucket
	ManualInterval time.Duration `koanf:"manual_interval"`
	ManualBurst    int           `koanf:"manual_burst"`

	// Circuit breaker around record store reads
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
}

// DashboardConfig holds composition settings
type DashboardConfig struct {
	Period              string             `koanf:"period"` // Default period for ad-hoc series requests
	MovingAverageWindow int                `koanf:"moving_average_window"`
	LTVFallbackMonths   float64            `koanf:"ltv_fallback_months"`
	KPITargets          []models.KPITarget `koanf:"kpi_targets"`

	// Optional overrides; nil means derive from records
	MRR        *float64 `koanf:"mrr"`
	ChurnRate  *float64 `koanf:"churn_rate"`
	TotalUsers *int     `koanf:"total_users"`
}

// SnapshotConfig holds BadgerDB snapshot persistence settings
type SnapshotConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Path        string `koanf:"path"`
	InMemory    bool   `koanf:"in_memory"`
	HistorySize int    `koanf:"history_size"` // Number of snapshots kept for /dashboard/history
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	SlowRequestThreshold time.Duration `koanf:"slow_request_threshold"` // 0 disables slow request logging
	LatencyWindow        int           `koanf:"latency_window"`         // Requests kept for /health/latency

	// Ad-hoc series responses cache, purged on ingest
	SeriesCacheSize int           `koanf:"series_cache_size"`
	SeriesCacheTTL  time.Duration `koanf:"series_cache_ttl"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration using the layered koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
