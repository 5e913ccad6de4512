// Package testutil holds helpers shared by the package tests: temporary
// inventory files, log capture and name extraction for assertions.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/hostgrid/internal/ctxlog"
	"github.com/vk/hostgrid/internal/inventory"
)

// WriteInventory writes content to a file named name inside a fresh
// temporary directory and returns its path.
func WriteInventory(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "failed to set up test file")
	return path
}

// Context returns a context carrying a debug logger that writes to buf.
func Context(t *testing.T, buf *SafeBuffer) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

// GroupNames returns the names of groups in order.
func GroupNames(groups []*inventory.Group) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name())
	}
	return names
}

// HostNames returns the names of hosts in order.
func HostNames(hosts []*inventory.Host) []string {
	names := make([]string, 0, len(hosts))
	for _, h := range hosts {
		names = append(names, h.Name())
	}
	return names
}
