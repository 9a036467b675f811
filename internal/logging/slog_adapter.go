// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// slogHandler forwards slog records to zerolog so that the supervisor's
// sutureslog hook writes to the same output as the rest of the server.
// Group names become dotted key prefixes.
type slogHandler struct {
	logger zerolog.Logger
	bound  []boundAttr
	prefix string
}

// boundAttr is an attribute from WithAttrs with the group prefix open at the time.
type boundAttr struct {
	prefix string
	attr   slog.Attr
}

// NewSlogLogger returns an *slog.Logger backed by the global zerolog logger.
//
//	hook := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
func NewSlogLogger() *slog.Logger {
	return slog.New(newSlogHandler(WithComponent("supervisor")))
}

//nolint:gocritic // zerolog.Logger is passed by value
func newSlogHandler(logger zerolog.Logger) *slogHandler {
	return &slogHandler{logger: logger}
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.GetLevel() <= zerologLevel(level)
}

//nolint:gocritic // slog.Handler passes records by value
func (h *slogHandler) Handle(_ context.Context, record slog.Record) error {
	event := h.logger.WithLevel(zerologLevel(record.Level))
	for _, b := range h.bound {
		addAttr(event, b.prefix, b.attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		addAttr(event, h.prefix, attr)
		return true
	})
	event.Msg(record.Message)
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.bound = make([]boundAttr, len(h.bound), len(h.bound)+len(attrs))
	copy(clone.bound, h.bound)
	for _, a := range attrs {
		clone.bound = append(clone.bound, boundAttr{prefix: h.prefix, attr: a})
	}
	return &clone
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func addAttr(event *zerolog.Event, prefix string, attr slog.Attr) {
	v := attr.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		// An unnamed group is inlined.
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(event, prefix, ga)
		}
		return
	}
	if attr.Key == "" {
		return
	}

	key := prefix + attr.Key
	switch v.Kind() {
	case slog.KindString:
		event.Str(key, v.String())
	case slog.KindInt64:
		event.Int64(key, v.Int64())
	case slog.KindUint64:
		event.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		event.Float64(key, v.Float64())
	case slog.KindBool:
		event.Bool(key, v.Bool())
	case slog.KindDuration:
		event.Dur(key, v.Duration())
	case slog.KindTime:
		event.Time(key, v.Time())
	default:
		event.Interface(key, v.Any())
	}
}

// zerologLevel maps slog's open-ended levels onto zerolog's fixed ones.
// Anything at or above slog.LevelError is an error; nothing maps to fatal.
func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelDebug:
		return zerolog.TraceLevel
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
