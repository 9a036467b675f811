// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/meridian/internal/models"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/meridian/config.yaml",
	"/etc/meridian/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultKPITargets are the dashboard KPIs shown when none are configured.
func defaultKPITargets() []models.KPITarget {
	return []models.KPITarget{
		{ID: "mrr", Category: "revenue", Target: 50000, Unit: "currency"},
		{ID: "arpu", Category: "revenue", Target: 100, Unit: "currency"},
		{ID: "churn_rate", Category: "users", Target: 5, Unit: "percent"},
		{ID: "active_users", Category: "users", Target: 1000, Unit: "count"},
		{ID: "overall_conversion", Category: "conversion", Target: 10, Unit: "percent"},
	}
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:               "/data/meridian.duckdb",
			MaxMemory:          "1GB",
			Threads:            0, // 0 = use runtime.NumCPU()
			CheckpointInterval: 10 * time.Minute,
			SeedMockData:       false,
			SeedDays:           90,
			SeedValue:          42,
		},
		Refresh: RefreshConfig{
			Interval:            30 * time.Second,
			Timeout:             20 * time.Second,
			ManualInterval:      10 * time.Second,
			ManualBurst:         1,
			BreakerMinRequests:  5,
			BreakerFailureRatio: 0.6,
			BreakerTimeout:      time.Minute,
		},
		Dashboard: DashboardConfig{
			Period:              "daily",
			MovingAverageWindow: 7,
			LTVFallbackMonths:   24,
			KPITargets:          defaultKPITargets(),
		},
		Snapshots: SnapshotConfig{
			Enabled:     true,
			Path:        "/data/snapshots",
			InMemory:    false,
			HistorySize: 48,
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,

			SlowRequestThreshold: time.Second,
			LatencyWindow:        1000,
			SeriesCacheSize:      128,
			SeriesCacheTTL:       5 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			MaxBodyBytes:      4 << 20, // 4MB
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults (from defaultConfig())
//  2. Config file (optional, from CONFIG_PATH or default locations)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := FindConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	// DUCKDB_PATH -> database.path
	// REFRESH_INTERVAL -> refresh.interval
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func FindConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue // already a slice (YAML or defaults)
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// KPI targets are list-of-object values and can only be set from the config file.
var envMappings = map[string]string{
	// Database mappings
	"duckdb_path":                "database.path",
	"duckdb_max_memory":          "database.max_memory",
	"duckdb_threads":             "database.threads",
	"duckdb_checkpoint_interval": "database.checkpoint_interval",
	"seed_mock_data":             "database.seed_mock_data",
	"seed_days":                  "database.seed_days",
	"seed_value":                 "database.seed_value",

	// Refresh mappings
	"refresh_interval":              "refresh.interval",
	"refresh_timeout":               "refresh.timeout",
	"refresh_manual_interval":       "refresh.manual_interval",
	"refresh_manual_burst":          "refresh.manual_burst",
	"refresh_breaker_min_requests":  "refresh.breaker_min_requests",
	"refresh_breaker_failure_ratio": "refresh.breaker_failure_ratio",
	"refresh_breaker_timeout":       "refresh.breaker_timeout",

	// Dashboard mappings
	"dashboard_period":      "dashboard.period",
	"moving_average_window": "dashboard.moving_average_window",
	"ltv_fallback_months":   "dashboard.ltv_fallback_months",
	"mrr_override":          "dashboard.mrr",
	"churn_rate_override":   "dashboard.churn_rate",
	"total_users_override":  "dashboard.total_users",

	// Snapshot mappings
	"snapshots_enabled":      "snapshots.enabled",
	"snapshots_path":         "snapshots.path",
	"snapshots_in_memory":    "snapshots.in_memory",
	"snapshots_history_size": "snapshots.history_size",

	// Server mappings
	"http_port":                   "server.port",
	"http_host":                   "server.host",
	"http_timeout":                "server.timeout",
	"http_shutdown_timeout":       "server.shutdown_timeout",
	"http_slow_request_threshold": "server.slow_request_threshold",
	"http_latency_window":         "server.latency_window",
	"series_cache_size":           "server.series_cache_size",
	"series_cache_ttl":            "server.series_cache_ttl",

	// Security mappings
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"max_body_bytes":      "security.max_body_bytes",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - MOVING_AVERAGE_WINDOW -> dashboard.moving_average_window
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables never reach the config
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for synchronising access to configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
