// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/meridian/internal/api"
	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/database"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/middleware"
	"github.com/tomtom215/meridian/internal/refresh"
	"github.com/tomtom215/meridian/internal/snapshots"
	"github.com/tomtom215/meridian/internal/supervisor"
	"github.com/tomtom215/meridian/internal/supervisor/services"
	ws "github.com/tomtom215/meridian/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("snapshots_enabled", cfg.Snapshots.Enabled).
		Dur("refresh_interval", cfg.Refresh.Interval).
		Msg("Starting Meridian with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	if cfg.Database.SeedMockData {
		logging.Info().Int("days", cfg.Database.SeedDays).Msg("Mock data seeding enabled (SEED_MOCK_DATA=true)")
		if err := db.SeedMockData(context.Background(), time.Now()); err != nil {
			// Close database before fatal exit to ensure defer runs
			if closeErr := db.Close(); closeErr != nil {
				logging.Error().Err(closeErr).Msg("Error closing database")
			}
			logging.Fatal().Err(err).Msg("Failed to seed mock data")
		}
	}

	// Snapshot persistence is optional; the dashboard is recomposed from
	// records on startup when it is off.
	var snapshotStore refresh.SnapshotStore
	var history api.SnapshotHistory
	if cfg.Snapshots.Enabled {
		store, err := snapshots.Open(&cfg.Snapshots)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open snapshot store")
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing snapshot store")
			}
		}()
		snapshotStore = store
		history = store
		logging.Info().
			Str("path", cfg.Snapshots.Path).
			Int("history_size", cfg.Snapshots.HistorySize).
			Msg("Snapshot store opened")
	}

	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFor(cfg))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	wsHub := ws.NewHub()

	// Record reads go through the breaker so a failing store trips fast
	// and the last good snapshot keeps being served.
	reader := refresh.NewCircuitBreakerReader(db, refresh.BreakerSettingsFromConfig(&cfg.Refresh))
	manager := refresh.NewManager(reader, snapshotStore, wsHub, cfg)

	var latency *middleware.LatencyTracker
	if cfg.Server.LatencyWindow > 0 {
		latency = middleware.NewLatencyTracker(cfg.Server.LatencyWindow, cfg.Server.SlowRequestThreshold)
	}

	handler := api.NewHandler(api.Dependencies{
		Config:    cfg,
		Dashboard: manager,
		History:   history,
		Records:   db,
		Reader:    reader,
		Hub:       wsHub,
		Latency:   latency,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	if cfg.Database.CheckpointInterval > 0 {
		tree.AddDataService(services.NewMaintenanceService(db, cfg.Database.CheckpointInterval, logging.WithComponent("maintenance")))
	}
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewRefreshService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	watchDashboardConfig(manager, handler)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// watchDashboardConfig reloads the dashboard section when the config file
// changes. Other sections need a restart.
func watchDashboardConfig(manager *refresh.Manager, handler *api.Handler) {
	path := config.FindConfigFile()
	if path == "" {
		return
	}

	err := config.WatchConfigFile(path, func() {
		cfg, err := config.Load()
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config reload")
			return
		}
		manager.UpdateDashboard(cfg.Dashboard)
		handler.ClearCache()
		logging.Info().Str("path", path).Msg("Dashboard configuration reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config hot-reload unavailable")
		return
	}
	logging.Info().Str("path", path).Msg("Watching config file for dashboard changes")
}
