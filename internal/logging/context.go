// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	queryIDKey   contextKey = "query_id"
)

// GenerateRequestID returns a full UUID for an HTTP request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateQueryID returns a short ID used to correlate the log lines of one
// recommendation query, including the TMDB calls it fans out to.
func GenerateQueryID() string {
	return uuid.New().String()[:8]
}

// ContextWithRequestID returns a context carrying the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithQueryID returns a context carrying a query correlation ID.
func ContextWithQueryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, queryIDKey, id)
}

// ContextWithNewQueryID attaches a freshly generated query ID.
func ContextWithNewQueryID(ctx context.Context) context.Context {
	return ContextWithQueryID(ctx, GenerateQueryID())
}

// QueryIDFromContext returns the query ID or "".
func QueryIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(queryIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with request_id and query_id fields added
// when the context carries them.
//
//	logging.Ctx(ctx).Info().Str("title", title).Msg("Query resolved")
func Ctx(ctx context.Context) *zerolog.Logger {
	lc := Logger().With()
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if id := QueryIDFromContext(ctx); id != "" {
		lc = lc.Str("query_id", id)
	}
	l := lc.Logger()
	return &l
}
