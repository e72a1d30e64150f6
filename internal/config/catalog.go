package config

import (
	"fmt"
	"strings"
)

// CatalogConfig points at the directory holding the catalog JSONL files
// (categories.jsonl, options.jsonl, rules.jsonl, settings.jsonl).
type CatalogConfig struct {
	DataDir string `envconfig:"DATA_DIR" default:"data"`
}

// Validate checks the catalog location is usable as a path.
func (c *CatalogConfig) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("catalog data directory cannot be empty")
	}
	return nil
}
