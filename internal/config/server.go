package config

import (
	"fmt"
	"slices"
	"time"
)

// ServerConfig configures the public REST API server.
type ServerConfig struct {
	Port              string        `envconfig:"PORT" default:"8080"`
	Host              string        `envconfig:"HOST" default:"0.0.0.0"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes    int           `envconfig:"MAX_HEADER_BYTES" default:"524288" validate:"min=1"` // 512KB

	// CORS
	CORSOrigins          []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	CORSAllowCredentials bool     `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
}

// Address returns the host:port pair the HTTP server binds to.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Validate performs validation on the ServerConfig.
func (c *ServerConfig) Validate(environment string) error {
	if err := checkPort(c.Port, "server"); err != nil {
		return err
	}
	if err := checkToken(c.Host, "server host"); err != nil {
		return err
	}

	// Browsers reject a wildcard origin combined with credentials, and in
	// production it would expose quote creation to every site.
	if slices.Contains(c.CORSOrigins, "*") {
		if c.CORSAllowCredentials {
			return fmt.Errorf("CORS wildcard origin cannot be combined with credentials")
		}
		if environment == EnvironmentProduction {
			return fmt.Errorf("CORS wildcard origin is not allowed in production environment")
		}
	}

	return nil
}
