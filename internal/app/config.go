package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Inventory sources.
const (
	SourceINI  = "ini"
	SourceJSON = "json"
)

// Output formats of the list command.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// InventoryPath is the inventory file, or "-" for standard input.
	InventoryPath string
	// Source is SourceINI or SourceJSON. Empty picks SourceJSON for a
	// ".json" file and SourceINI otherwise.
	Source string
	Output string

	LogFormat   string
	LogLevel    string
	AllowCycles bool
}

// NewConfig validates cfg, fills in defaults and returns the result.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.InventoryPath == "" {
		return nil, errors.New("InventoryPath is a required configuration field and cannot be empty")
	}

	cfg.Source = strings.ToLower(cfg.Source)
	switch cfg.Source {
	case "", "auto":
		cfg.Source = SourceINI
		if strings.EqualFold(filepath.Ext(cfg.InventoryPath), ".json") {
			cfg.Source = SourceJSON
		}
	case SourceINI, SourceJSON:
	default:
		return nil, fmt.Errorf("invalid source %q: must be 'ini' or 'json'", cfg.Source)
	}

	cfg.Output = strings.ToLower(cfg.Output)
	switch cfg.Output {
	case "":
		cfg.Output = OutputJSON
	case OutputJSON, OutputYAML:
	default:
		return nil, fmt.Errorf("invalid output %q: must be 'json' or 'yaml'", cfg.Output)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "warn"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	return &cfg, nil
}
