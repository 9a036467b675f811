// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// serviceName is attached to every log line.
const serviceName = "meridian"

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level (see ValidLevel). Default: info
	Level string

	// Format is json or console. Default: json
	Format string

	// Caller adds file:line to every line.
	Caller bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

var levels = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"panic":    zerolog.PanicLevel,
	"disabled": zerolog.Disabled,
}

// global holds the process logger. Loggers are swapped whole on Init, so
// readers never need a lock.
var global atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // logging must work before config is loaded
func init() {
	Init(Config{})
}

// Init replaces the global logger. It may be called again to reconfigure.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	logCtx := zerolog.New(out).With().Timestamp().Str("service", serviceName)
	if cfg.Caller {
		logCtx = logCtx.Caller()
	}
	logger := logCtx.Logger()
	global.Store(&logger)
}

// parseLevel maps a level name to zerolog; unknown names mean info.
func parseLevel(level string) zerolog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	_, ok := levels[strings.ToLower(level)]
	return ok
}

func current() *zerolog.Logger {
	return global.Load()
}

// Debug starts a debug-level event on the global logger.
func Debug() *zerolog.Event { return current().Debug() }

// Info starts an info-level event on the global logger.
//
//	logging.Info().Dur("interval", cfg.Refresh.Interval).Msg("Starting refresh manager")
func Info() *zerolog.Event { return current().Info() }

// Warn starts a warn-level event on the global logger.
func Warn() *zerolog.Event { return current().Warn() }

// Error starts an error-level event on the global logger.
func Error() *zerolog.Event { return current().Error() }

// Fatal starts a fatal event; os.Exit(1) follows the write.
func Fatal() *zerolog.Event { return current().Fatal() }

// WithComponent returns a child of the global logger tagged with component,
// for long-lived services that keep their own logger.
//
//	services.NewMaintenanceService(db, interval, logging.WithComponent("maintenance"))
func WithComponent(component string) zerolog.Logger {
	return current().With().Str("component", component).Logger()
}
