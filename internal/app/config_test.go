package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{InventoryPath: "hosts"})
	require.NoError(t, err)
	assert.Equal(t, &Config{
		InventoryPath: "hosts",
		Source:        SourceINI,
		Output:        OutputJSON,
		LogFormat:     "text",
		LogLevel:      "warn",
	}, cfg)
}

func TestNewConfig_SourceDetection(t *testing.T) {
	testCases := []struct {
		path, source, expected string
	}{
		{path: "inventory.json", expected: SourceJSON},
		{path: "INVENTORY.JSON", expected: SourceJSON},
		{path: "hosts.ini", expected: SourceINI},
		{path: "-", expected: SourceINI},
		{path: "inventory.json", source: "ini", expected: SourceINI},
		{path: "hosts", source: "JSON", expected: SourceJSON},
		{path: "hosts.json", source: "auto", expected: SourceJSON},
	}
	for _, tc := range testCases {
		t.Run(tc.path+"/"+tc.source, func(t *testing.T) {
			cfg, err := NewConfig(Config{InventoryPath: tc.path, Source: tc.source})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg.Source)
		})
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		message string
	}{
		{name: "missing path", cfg: Config{}, message: "InventoryPath is a required configuration field"},
		{name: "bad source", cfg: Config{InventoryPath: "h", Source: "yaml"}, message: "invalid source"},
		{name: "bad output", cfg: Config{InventoryPath: "h", Output: "xml"}, message: "invalid output"},
		{name: "bad log format", cfg: Config{InventoryPath: "h", LogFormat: "pretty"}, message: "invalid log-format"},
		{name: "bad log level", cfg: Config{InventoryPath: "h", LogLevel: "trace"}, message: "invalid log-level"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, tc.message)
		})
	}
}
