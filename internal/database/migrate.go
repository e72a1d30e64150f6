package database

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/rafaeljc/cpq/internal/config"
	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/validation"
)

// Migrate applies every pending up migration from cfg.MigrationsDir and
// returns the resulting schema version. An up-to-date schema is not an error.
func Migrate(cfg *config.DatabaseConfig, log *slog.Logger) (uint, error) {
	validation.AssertNotNil(cfg, "database config")
	log = logger.OrDefault(log)

	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	m, err := migrate.New("file://"+dir, cfg.ConnectionString())
	if err != nil {
		return 0, fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug("database schema is up to date")
	case err != nil:
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("database schema version %d is dirty", version)
	}

	log.Info("database schema migrated", slog.Uint64("version", uint64(version)))
	return version, nil
}
