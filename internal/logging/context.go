// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	correlationIDKey
)

// ContextWithRequestID stores the HTTP request ID of ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID of ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// ContextWithNewCorrelationID tags ctx with a fresh short ID. One ID covers
// one request or one refresh cycle, whichever started the work.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return context.WithValue(ctx, correlationIDKey, uuid.NewString()[:8])
}

// CorrelationIDFromContext returns the correlation ID of ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	id, _ := ctx.Value(key).(string)
	return id
}

// Ctx returns the global logger with the request and correlation IDs of ctx.
//
//	logging.Ctx(ctx).Info().Str("snapshot_id", snap.ID).Msg("Dashboard refreshed")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := current().With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	logger := logCtx.Logger()
	return &logger
}
