// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/taibuivan/securepass/internal/platform/constants"
	"github.com/taibuivan/securepass/internal/platform/respond"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 2 * time.Second

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func(context.Context) error

	// CheckCache pings the Redis client.
	CheckCache func(context.Context) error

	// Clock stamps the liveness body. Nil means the real clock.
	Clock clockwork.Clock
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type livenessResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string        `json:"status"`
	Checks []checkResult `json:"checks"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /api/health (liveness).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, livenessResponse{
		Status:    "OK",
		Message:   constants.HealthMessage,
		Timestamp: handler.dependencies.Clock.Now().UTC(),
	})
}

// readiness handles GET /api/ready (readiness).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	checks := []struct {
		name  string
		check func(context.Context) error
	}{
		{"postgres", handler.dependencies.CheckDatabase},
		{"redis", handler.dependencies.CheckCache},
	}

	results := make([]checkResult, 0, len(checks))
	isSystemReady := true

	for _, dependency := range checks {
		if dependency.check == nil {
			continue
		}

		context, cancel := context.WithTimeout(request.Context(), readinessTimeout)
		err := dependency.check(context)
		cancel()

		result := checkResult{Name: dependency.name, IsOK: err == nil}
		if err != nil {
			// The cause stays in the logs; callers only learn which dependency failed.
			result.Error = "unavailable"
			isSystemReady = false
			handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", dependency.name),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
	}

	if !isSystemReady {
		respond.JSON(writer, http.StatusServiceUnavailable, readinessResponse{Status: "degraded", Checks: results})
		return
	}

	respond.OK(writer, readinessResponse{Status: "ready", Checks: results})
}
