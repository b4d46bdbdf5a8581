// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the SQL files under data/migrations with
// golang-migrate before the API accepts traffic.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the "pgx5" database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the "file" source scheme.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty means a previous run stopped halfway and needs an operator.
var ErrDirty = errors.New("migration: database is dirty")

// # Commands

/*
RunUp applies every pending migration.

Parameters:
  - dsn: postgres:// URL; rewritten to the pgx5 scheme.
  - migrationsPath: Directory holding the NNNNNN_name.up.sql files.
  - logger: Receives schema_* events; per-file output at debug level.

Returns:
  - error: [ErrDirty] when a prior run failed, or the migrate error.
*/
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := open(dsn, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	from, err := version(migrator)
	if err != nil {
		return err
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema_up_to_date", slog.Uint64("version", uint64(from)))
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	to, _ := version(migrator)
	logger.Info("schema_migrated",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)

	return nil
}

// # URL Helpers

// Pgx5URL rewrites a postgres:// or postgresql:// URL to the pgx5:// scheme.
// Other inputs pass through.
func Pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// SourceURL turns a directory into a file:// source URL, keeping relative
// paths relative so MIGRATION_PATH=./data/migrations works from the repo root.
func SourceURL(migrationsPath string) string {
	return "file://" + filepath.ToSlash(filepath.Clean(migrationsPath))
}

// # Internals

func open(dsn, migrationsPath string, logger *slog.Logger) (*migrate.Migrate, error) {
	migrator, err := migrate.New(SourceURL(migrationsPath), Pgx5URL(dsn))
	if err != nil {
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}

	migrator.Log = &slogBridge{logger: logger}
	return migrator, nil
}

// version reports the applied version; zero means an empty schema.
func version(migrator *migrate.Migrate) (uint, error) {
	current, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("migration: failed to read version: %w", err)
	}
	if dirty {
		return current, fmt.Errorf("%w at version %d", ErrDirty, current)
	}
	return current, nil
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceErr, databaseErr := migrator.Close()
	if err := errors.Join(sourceErr, databaseErr); err != nil {
		logger.Warn("schema_migrator_close_failed", slog.Any("error", err))
	}
}

// slogBridge satisfies migrate.Logger.
type slogBridge struct {
	logger *slog.Logger
}

func (bridge *slogBridge) Printf(format string, args ...any) {
	bridge.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (bridge *slogBridge) Verbose() bool {
	return bridge.logger.Enabled(context.Background(), slog.LevelDebug)
}
