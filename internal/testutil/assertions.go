package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/hostgrid/internal/inventory"
)

// RequireGroup fails the test unless inv has a group called name.
func RequireGroup(t *testing.T, inv *inventory.Inventory, name string) *inventory.Group {
	t.Helper()
	g, ok := inv.Group(name)
	require.True(t, ok, "expected group %q to exist", name)
	return g
}

// RequireHost fails the test unless inv has a host called name.
func RequireHost(t *testing.T, inv *inventory.Inventory, name string) *inventory.Host {
	t.Helper()
	h, ok := inv.Host(name)
	require.True(t, ok, "expected host %q to exist", name)
	return h
}
