// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware holds the HTTP decorators mounted by package api.

Order in the router matters:

	ClientIP -> RequestID -> ExposeErrors -> StructuredLogger -> metrics -> PanicRecovery
	-> CORS -> Timeout -> RateLimit -> CleanPath -> Authenticate -> handlers

Errors raised here go through [respond.Error] so clients always receive the
same {message, code} body as from a handler.
*/
package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/taibuivan/securepass/internal/platform/constants"
	"github.com/taibuivan/securepass/internal/platform/ctxutil"
)

// # Error Exposure

// ExposeErrors marks every request so [respond.Error] may include internal
// causes in the body. It is mounted with enabled=true in development only.
func ExposeErrors(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := ctxutil.WithExposeErrors(request.Context(), enabled)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Request Tracing

// maxRequestIDLength caps client-supplied ids before they reach logs.
const maxRequestIDLength = 128

// RequestID keeps a sane client X-Request-ID or mints a UUID v7.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			requestID := strings.TrimSpace(request.Header.Get(constants.HeaderXRequestID))
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = newRequestID()
			}

			writer.Header().Set(constants.HeaderXRequestID, requestID)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithRequestID(request.Context(), requestID)))
		})
	}
}

func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
