// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores and reads the per-request values set by middleware.
// Every getter is safe on a bare context.Background().
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/securepass/internal/platform/ctxkey"
	"github.com/taibuivan/securepass/internal/platform/sec"
)

// lookup returns the typed value under key, or the zero value.
func lookup[T any](ctx context.Context, key ctxkey.Key) (T, bool) {
	value, ok := ctx.Value(key).(T)
	return value, ok
}

// # Request Tracing

// WithRequestID attaches the X-Request-ID value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the request id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := lookup[string](ctx, ctxkey.KeyRequestID)
	return id
}

// # Client Address

// WithClientIP attaches the caller address chosen by the ClientIP middleware.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyClientIP, ip)
}

// GetClientIP returns the resolved caller address, or "" when none was set.
func GetClientIP(ctx context.Context) string {
	ip, _ := lookup[string](ctx, ctxkey.KeyClientIP)
	return ip
}

// # Logging

// WithLogger attaches the request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default] so
// services can log without checking.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := lookup[*slog.Logger](ctx, ctxkey.KeyLogger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// # Error Exposure

// WithExposeErrors marks whether error bodies may include the internal cause.
func WithExposeErrors(ctx context.Context, expose bool) context.Context {
	return context.WithValue(ctx, ctxkey.KeyExposeErrors, expose)
}

// ExposeErrors reports the mark set by [WithExposeErrors]; false by default.
func ExposeErrors(ctx context.Context) bool {
	expose, _ := lookup[bool](ctx, ctxkey.KeyExposeErrors)
	return expose
}

// # Identity

// WithAuthUser attaches the caller resolved from a bearer token or session.
func WithAuthUser(ctx context.Context, user *sec.AuthenticatedUser) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser returns the caller, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthenticatedUser {
	user, _ := lookup[*sec.AuthenticatedUser](ctx, ctxkey.KeyUser)
	return user
}
