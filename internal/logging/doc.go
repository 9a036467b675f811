// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

// Package logging provides centralized zerolog-based structured logging for Meridian.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger with JSON (production) or console (development) output,
//     tagged "service":"meridian"
//   - Context-aware logging that attaches request IDs and a correlation ID per
//     request or refresh cycle
//   - An slog adapter so the suture supervisor logs through the same output
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Refresh failed, keeping previous snapshot")
//
// # Configuration
//
// Environment Variables (read by the config package):
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Suture Integration
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
//	spec := suture.Spec{EventHook: handler.MustHook()}
package logging
