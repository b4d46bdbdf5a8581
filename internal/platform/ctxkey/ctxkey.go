// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the context keys shared by middleware and handlers.
// Values are set and read only through package ctxutil.
package ctxkey

// Key is a distinct type so its values never collide with keys of other packages.
type Key uint8

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID Key = iota + 1

	// KeyUser carries the resolved [sec.AuthenticatedUser], bearer or session.
	KeyUser

	// KeyLogger carries the per-request *slog.Logger.
	KeyLogger

	// KeyExposeErrors marks requests whose error bodies may include the cause.
	KeyExposeErrors

	// KeyClientIP carries the caller address resolved against the trusted proxies.
	KeyClientIP
)

var names = [...]string{
	KeyRequestID:    "request_id",
	KeyUser:         "user",
	KeyLogger:       "logger",
	KeyExposeErrors: "expose_errors",
	KeyClientIP:     "client_ip",
}

// String names the key in debug output.
func (k Key) String() string {
	if int(k) < len(names) && names[k] != "" {
		return "securepass." + names[k]
	}
	return "securepass.unknown"
}
