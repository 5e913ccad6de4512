package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hostgrid/internal/app"
	"github.com/vk/hostgrid/internal/ini"
	"github.com/vk/hostgrid/internal/testutil"
)

const hostsINI = `[web]
web1 http_port=80

[web:vars]
tier=frontend

[prod:children]
web
`

func TestLoad_INI(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", hostsINI)
	a, _, logs := app.SetupAppTest(t, app.Config{InventoryPath: path})

	require.NoError(t, a.Load(context.Background()))
	require.NotNil(t, a.Inventory())
	assert.Equal(t, []string{"all", "ungrouped", "web", "prod"}, testutil.GroupNames(a.Inventory().Groups()))
	assert.Contains(t, logs.String(), "Inventory loaded.")
}

func TestLoad_JSON(t *testing.T) {
	path := testutil.WriteInventory(t, "inventory.json", `{"web": ["web1"], "prod": {"children": ["web"]}}`)
	a, _, _ := app.SetupAppTest(t, app.Config{InventoryPath: path})

	require.NoError(t, a.Load(context.Background()))
	assert.Equal(t, []string{"prod"}, testutil.GroupNames(testutil.RequireGroup(t, a.Inventory(), "web").Parents()))
}

func TestLoad_ParseErrorKeepsType(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", "[web:vars]\nport=1\n")
	a, _, _ := app.SetupAppTest(t, app.Config{InventoryPath: path})

	err := a.Load(context.Background())
	var refErr *ini.UnresolvedReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "web", refErr.Group)
	assert.Nil(t, a.Inventory())
}

func TestLoad_AllowCycles(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", "[a:children]\nb\n[b:children]\na\n")

	strict, _, _ := app.SetupAppTest(t, app.Config{InventoryPath: path})
	assert.Error(t, strict.Load(context.Background()))

	lenient, _, logs := app.SetupAppTest(t, app.Config{InventoryPath: path, AllowCycles: true})
	require.NoError(t, lenient.Load(context.Background()))
	assert.Contains(t, logs.String(), "Inventory hierarchy is not acyclic.")
}

func TestCommands_RequireLoad(t *testing.T) {
	a, _, _ := app.SetupAppTest(t, app.Config{InventoryPath: "unused"})
	ctx := context.Background()

	assert.ErrorIs(t, a.List(ctx), app.ErrNotLoaded)
	assert.ErrorIs(t, a.Graph(ctx, "", false), app.ErrNotLoaded)
	assert.ErrorIs(t, a.Host(ctx, "web1"), app.ErrNotLoaded)
}

func TestList(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", hostsINI)

	t.Run("json", func(t *testing.T) {
		a, out, _ := app.SetupAppTest(t, app.Config{InventoryPath: path})
		require.NoError(t, a.Load(context.Background()))
		require.NoError(t, a.List(context.Background()))
		assert.JSONEq(t, `{
			"_meta": {"hostvars": {"web1": {"http_port": 80}}},
			"all": {"children": ["ungrouped", "prod"]},
			"ungrouped": {},
			"web": {"hosts": ["web1"], "vars": {"tier": "frontend"}},
			"prod": {"children": ["web"]}
		}`, out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		a, out, _ := app.SetupAppTest(t, app.Config{InventoryPath: path, Output: app.OutputYAML})
		require.NoError(t, a.Load(context.Background()))
		require.NoError(t, a.List(context.Background()))
		assert.Contains(t, out.String(), "all:\n  children:\n")
		assert.Contains(t, out.String(), "tier: frontend")
	})
}

func TestGraph(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", hostsINI)
	a, out, _ := app.SetupAppTest(t, app.Config{InventoryPath: path})
	require.NoError(t, a.Load(context.Background()))

	require.NoError(t, a.Graph(context.Background(), "prod", false))
	assert.Equal(t, "@prod:\n  |--@web:\n  |  |--web1\n", out.String())

	err := a.Graph(context.Background(), "nope", false)
	assert.ErrorIs(t, err, app.ErrUnknownGroup)
	assert.EqualError(t, err, "unknown group: nope")
}

func TestHost(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", hostsINI)
	a, out, _ := app.SetupAppTest(t, app.Config{InventoryPath: path})
	require.NoError(t, a.Load(context.Background()))

	require.NoError(t, a.Host(context.Background(), "web1"))
	assert.JSONEq(t, `{"http_port": 80, "tier": "frontend"}`, out.String())

	assert.ErrorIs(t, a.Host(context.Background(), "ghost"), app.ErrUnknownHost)
}
