package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DatabaseConfig contains PostgreSQL connection settings for the postgres quote backend.
type DatabaseConfig struct {
	// Either a full URL or the individual components below.
	URL      string `envconfig:"URL"`
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT" default:"5432"`
	Name     string `envconfig:"NAME"`
	User     string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`

	SSLMode string `envconfig:"SSL_MODE" default:"prefer" validate:"oneof=disable allow prefer require verify-ca verify-full"`

	// ApplicationName is reported to the server (pg_stat_activity).
	ApplicationName string `envconfig:"APPLICATION_NAME" default:"cpq"`

	// Connection Pool
	MaxConns        int32         `envconfig:"MAX_CONNS" default:"10" validate:"min=1"`
	MinConns        int32         `envconfig:"MIN_CONNS" default:"1" validate:"min=0"`
	MaxConnLifetime time.Duration `envconfig:"MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `envconfig:"MAX_CONN_IDLE_TIME" default:"30m"`
	ConnectTimeout  time.Duration `envconfig:"CONNECT_TIMEOUT" default:"5s"`

	// Schema migrations applied at startup.
	AutoMigrate   bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`
}

// ConnectionString builds a PostgreSQL connection string.
// A configured URL wins over the individual components.
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}

	params := url.Values{}
	params.Add("sslmode", c.SSLMode)
	if c.ApplicationName != "" {
		params.Add("application_name", c.ApplicationName)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: params.Encode(),
	}
	return u.String()
}

// minProductionPasswordLen is enforced only when the environment is production.
const minProductionPasswordLen = 12

// maxIdentifierLen is PostgreSQL's NAMEDATALEN-1.
const maxIdentifierLen = 63

// Validate checks the connection settings. A URL is only checked for shape;
// the individual components also get the production hardening rules.
func (c *DatabaseConfig) Validate(environment string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("database configuration is required for the postgres quote backend")
	}

	var err error
	if c.URL != "" {
		err = checkPostgresURL(c.URL)
	} else {
		err = c.checkComponents(environment)
	}
	if err != nil {
		return err
	}

	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min_conns (%d) cannot be greater than max_conns (%d)", c.MinConns, c.MaxConns)
	}
	if c.AutoMigrate && strings.TrimSpace(c.MigrationsDir) == "" {
		return fmt.Errorf("migrations directory is required when auto-migrate is enabled")
	}
	return nil
}

// IsConfigured reports whether enough is set to attempt a connection.
func (c *DatabaseConfig) IsConfigured() bool {
	return c.URL != "" || (c.Host != "" && c.Name != "" && c.User != "")
}

func (c *DatabaseConfig) checkComponents(environment string) error {
	if err := checkToken(c.Host, "database host"); err != nil {
		return err
	}
	if err := checkPort(c.Port, "database"); err != nil {
		return err
	}
	if err := checkToken(c.Name, "database name"); err != nil {
		return err
	}
	if len(c.Name) > maxIdentifierLen {
		return fmt.Errorf("database name cannot exceed %d characters", maxIdentifierLen)
	}
	if err := checkToken(c.User, "database user"); err != nil {
		return err
	}

	if environment != EnvironmentProduction {
		return nil
	}
	switch {
	case c.Password == "":
		return fmt.Errorf("database password is required in production environment")
	case len(c.Password) < minProductionPasswordLen:
		return fmt.Errorf("database password must be at least %d characters in production", minProductionPasswordLen)
	}
	switch c.SSLMode {
	case "require", "verify-ca", "verify-full":
		return nil
	default:
		return fmt.Errorf("database SSL mode %q is not allowed in production environment", c.SSLMode)
	}
}

func checkPostgresURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("invalid database URL: scheme %q must be postgres or postgresql", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid database URL: host is required")
	}
	if u.User == nil || u.User.Username() == "" {
		return fmt.Errorf("invalid database URL: user is required")
	}
	if strings.Trim(u.Path, "/") == "" {
		return fmt.Errorf("invalid database URL: database name is required in path")
	}
	return nil
}
