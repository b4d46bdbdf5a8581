// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/securepass/internal/platform/config"
	"github.com/taibuivan/securepass/internal/platform/constants"
	"github.com/taibuivan/securepass/internal/platform/metrics"
	"github.com/taibuivan/securepass/internal/platform/middleware"
	"github.com/taibuivan/securepass/internal/users/auth"
	"github.com/taibuivan/securepass/internal/vault/credential"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /api/health handler. It answers 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /api/ready handler. It answers 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles registration, login, Google sign-in and sessions.
	Auth *auth.Handler

	// Credentials handles the password vault.
	Credentials *credential.Handler

	// Metrics serves the Prometheus exposition. Optional.
	Metrics http.Handler
}

// Identity resolves who is calling.
type Identity struct {
	Tokens   middleware.TokenVerifier
	Sessions middleware.SessionResolver
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// httpMetrics may be nil.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, identity Identity, httpMetrics *metrics.HTTPMetrics, h Handlers) *Server {
	r := chi.NewRouter()

	// Entries were checked by config.Validate; a malformed list trusts nothing.
	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		log.Warn("trusted_proxies_ignored", slog.Any("error", err))
		trusted = nil
	}

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.ClientIP(trusted))
	r.Use(middleware.RequestID())
	r.Use(middleware.ExposeErrors(cfg.IsDevelopment()))
	r.Use(middleware.StructuredLogger(log))
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context, middleware.DefaultRatePolicy))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.Liveness)
		api.Get("/ready", h.Readiness)

		authenticate := middleware.Authenticate(identity.Tokens, identity.Sessions)

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(middleware.RateLimit(context, middleware.AuthRatePolicy))
			auth.Mount("/", h.Auth.Routes(authenticate))
		})

		api.Group(func(vault chi.Router) {
			vault.Use(authenticate)
			vault.Mount("/credentials", h.Credentials.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
