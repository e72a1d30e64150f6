// Package config provides centralized configuration management for the CPQ services.
// It uses envconfig for environment variable loading and validator for validation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvironmentProduction is the production environment identifier
	EnvironmentProduction = "production"

	// envPrefix is prepended to every environment variable (CPQ_APP_NAME, CPQ_DB_URL, ...).
	envPrefix = "CPQ"
)

// Config holds the complete application configuration.
type Config struct {
	App           AppConfig           `envconfig:"APP"`
	Server        ServerConfig        `envconfig:"SERVER"`
	Catalog       CatalogConfig       `envconfig:"CATALOG"`
	Quotes        QuotesConfig        `envconfig:"QUOTES"`
	Database      DatabaseConfig      `envconfig:"DB"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
}

// AppConfig contains core application settings.
type AppConfig struct {
	Name            string        `envconfig:"NAME" default:"cpq"`
	Version         string        `envconfig:"VERSION" default:"dev"`
	Environment     string        `envconfig:"ENV" default:"development" validate:"oneof=development staging production"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// Load reads configuration from environment variables with the CPQ prefix.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate runs the struct tags first, then the cross-field rules of each
// section. The database section only matters for the postgres quote backend.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	var errs []error
	errs = append(errs,
		c.Server.Validate(c.App.Environment),
		c.Catalog.Validate(),
		c.Quotes.Validate(),
		c.Observability.Validate(),
	)
	if c.Quotes.Backend == QuotesBackendPostgres {
		errs = append(errs, c.Database.Validate(c.App.Environment))
	}

	return errors.Join(errs...)
}

// LogConfig logs the current configuration (without sensitive data).
func (c *Config) LogConfig(log *slog.Logger) {
	log.Info("configuration loaded",
		slog.String("app_name", c.App.Name),
		slog.String("version", c.App.Version),
		slog.String("environment", c.App.Environment),
		slog.String("log_level", c.App.LogLevel),
		slog.String("log_format", c.App.LogFormat),
		slog.Duration("shutdown_timeout", c.App.ShutdownTimeout),
		slog.String("server_port", c.Server.Port),
		slog.Any("cors_origins", c.Server.CORSOrigins),
		slog.String("catalog_dir", c.Catalog.DataDir),
		slog.String("quotes_backend", c.Quotes.Backend),
		slog.Bool("db_configured", c.Database.IsConfigured()),
		slog.String("observability_port", c.Observability.Port),
	)
}
