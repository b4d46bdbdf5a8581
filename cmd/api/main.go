// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the SecurePass HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the credential cipher and token service.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taibuivan/securepass/internal/api"
	"github.com/taibuivan/securepass/internal/platform/config"
	"github.com/taibuivan/securepass/internal/platform/constants"
	"github.com/taibuivan/securepass/internal/platform/metrics"
	"github.com/taibuivan/securepass/internal/platform/migration"
	pgstore "github.com/taibuivan/securepass/internal/platform/postgres"
	redisstore "github.com/taibuivan/securepass/internal/platform/redis"
	"github.com/taibuivan/securepass/internal/platform/sec"
	"github.com/taibuivan/securepass/internal/users/auth"
	"github.com/taibuivan/securepass/internal/vault/credential"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("kdf", cfg.EncryptionKDF),
	)

	if fallbacks := cfg.FallbackSecretsInUse(); len(fallbacks) > 0 {
		log.Warn("fallback_secrets_in_use", slog.Any("keys", fallbacks))
	}

	// Root context for startup. A deadline makes misconfiguration fail fast
	// rather than hang indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Crypto ─────────────────────────────────────────────────────────
	cipher := sec.NewCredentialCipher(cfg.EncryptionKey, keyDeriver(cfg))
	must(log, cipher.SelfCheck(), "initialize credential cipher")

	tokens := sec.NewTokenService([]byte(cfg.JWTSecret), constants.AuthIssuer, sec.TokenTTL, nil)

	// ── 7. Metrics ────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	domainMetrics := metrics.NewDomainMetrics(registry)

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: pgstore.Checker(pool),
		CheckCache:    redisstore.Checker(rdb),
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewLoginAttemptRepository(rdb),
		tokens,
		auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL),
		auth.ThrottlePolicy{MaxAttempts: cfg.LoginMaxAttempts, Window: cfg.LoginLockoutWindow},
		domainMetrics,
	)
	sessions := auth.NewSessionManager(cfg.SessionSecret, !cfg.IsDevelopment(), authService, nil)

	credentialService := credential.NewService(credential.NewPostgresRepository(pool), cipher, domainMetrics)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log,
		api.Identity{Tokens: tokens, Sessions: sessions},
		httpMetrics,
		api.Handlers{
			Liveness:    liveness,
			Readiness:   readiness,
			Auth:        auth.NewHandler(authService, sessions, cfg.ClientURL),
			Credentials: credential.NewHandler(credentialService),
			Metrics:     metrics.Handler(registry),
		},
	)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger with the global app attribute.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "securepass"))
}

// keyDeriver selects the envelope keying scheme configured by ENCRYPTION_KDF.
func keyDeriver(cfg *config.Config) sec.KeyDeriver {
	if cfg.EncryptionKDF == config.KDFArgon2ID {
		return sec.Argon2KeyDeriver{Salt: []byte(cfg.EncryptionKDFSalt)}
	}
	return sec.PadKeyDeriver{}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
