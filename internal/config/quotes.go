package config

import (
	"fmt"
	"strings"
)

const (
	// QuotesBackendFile stores quotes in an append-only JSONL file.
	QuotesBackendFile = "file"
	// QuotesBackendPostgres stores quotes in the PostgreSQL 'quotes' table.
	QuotesBackendPostgres = "postgres"
)

// QuotesConfig selects where quote requests are persisted.
type QuotesConfig struct {
	Backend string `envconfig:"BACKEND" default:"file" validate:"oneof=file postgres"`
	File    string `envconfig:"FILE" default:"data/quotes.jsonl"`
}

// Validate checks backend specific requirements.
func (c *QuotesConfig) Validate() error {
	if c.Backend == QuotesBackendFile && strings.TrimSpace(c.File) == "" {
		return fmt.Errorf("quotes file path is required for the file backend")
	}
	return nil
}
