package export_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hostgrid/internal/ctxlog"
	"github.com/vk/hostgrid/internal/dynamic"
	"github.com/vk/hostgrid/internal/export"
	"github.com/vk/hostgrid/internal/ini"
	"github.com/vk/hostgrid/internal/inventory"
	"github.com/vk/hostgrid/internal/testutil"
	"gopkg.in/yaml.v3"
)

const sample = `[web]
web1 http_port=80

[prod:children]
web

[prod:vars]
env=prod
`

func parse(t *testing.T, content string, opts ...ini.Option) *inventory.Inventory {
	t.Helper()
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.Discard())
	inv, err := ini.ParseString(ctx, "hosts.ini", content, opts...)
	require.NoError(t, err)
	return inv
}

func TestJSON(t *testing.T) {
	out, err := export.JSON(parse(t, sample))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"_meta": {"hostvars": {"web1": {"http_port": 80}}},
		"all": {"children": ["ungrouped", "prod"]},
		"ungrouped": {},
		"web": {"hosts": ["web1"]},
		"prod": {"children": ["web"], "vars": {"env": "prod"}}
	}`, string(out))
	assert.True(t, strings.HasSuffix(string(out), "}\n"))
}

func TestJSON_NullAndContainerValues(t *testing.T) {
	inv := parse(t, "[g]\n[g:vars]\nnothing=None\nitems=[1, 'two', None]\n")

	out, err := export.JSON(inv)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"nothing": null`)
	assert.NotContains(t, string(out), `"type"`)
}

func TestJSON_RoundTrip(t *testing.T) {
	inv := parse(t, sample+"[db]\ndb1 role=\"primary\" weight=1.5\n[prod:children]\ndb\n")

	out, err := export.JSON(inv)
	require.NoError(t, err)
	loaded, err := dynamic.Load(context.Background(), "export.json", bytes.NewReader(out))
	require.NoError(t, err)

	for _, g := range inv.Groups() {
		other := testutil.RequireGroup(t, loaded, g.Name())
		if diff := cmp.Diff(testutil.GroupNames(g.Children()), testutil.GroupNames(other.Children())); diff != "" {
			t.Errorf("children of %s mismatch (-want +got):\n%s", g.Name(), diff)
		}
		assert.Equal(t, testutil.HostNames(g.Hosts()), testutil.HostNames(other.Hosts()), "hosts of %s", g.Name())
		assert.Equal(t, g.VarNames(), other.VarNames(), "vars of %s", g.Name())
	}
	for _, h := range inv.Hosts() {
		other := testutil.RequireHost(t, loaded, h.Name())
		for _, k := range h.VarNames() {
			want, _ := h.Variable(k)
			got, ok := other.Variable(k)
			require.True(t, ok, "%s.%s", h.Name(), k)
			assert.True(t, want.Equals(got).True(), "%s.%s: want %#v, got %#v", h.Name(), k, want, got)
		}
	}
}

func TestHostJSON(t *testing.T) {
	inv := parse(t, "[all:vars]\nenv=dev\nport=1\n[web]\nweb1 port=2\n")

	out, err := export.HostJSON(inv, testutil.RequireHost(t, inv, "web1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"env": "dev", "port": 2}`, string(out))
}

func TestYAML(t *testing.T) {
	inv := parse(t, sample+"[db]\nweb1\n")

	out, err := export.YAML(inv)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out, &got))
	want := map[string]any{
		"all": map[string]any{
			"children": map[string]any{
				"ungrouped": map[string]any{},
				"prod": map[string]any{
					"vars": map[string]any{"env": "prod"},
					"children": map[string]any{
						"web": map[string]any{
							"hosts": map[string]any{
								"web1": map[string]any{"http_port": 80},
							},
						},
					},
				},
				"db": map[string]any{
					"hosts": map[string]any{"web1": map[string]any{}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}

	// Registration order is kept.
	text := string(out)
	assert.Less(t, strings.Index(text, "ungrouped:"), strings.Index(text, "prod:"))
	assert.Less(t, strings.Index(text, "prod:"), strings.Index(text, "db:"))
}

func TestYAML_QuotesStringsThatLookLikeOtherTypes(t *testing.T) {
	inv := parse(t, "[g]\n[g:vars]\nversion=\"1.10\"\nflag='true'\n")

	out, err := export.YAML(inv)
	require.NoError(t, err)

	var got map[string]map[string]map[string]map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(out, &got))
	vars := got["all"]["children"]["g"]["vars"]
	assert.Equal(t, "1.10", vars["version"])
	assert.Equal(t, "true", vars["flag"])
}

func TestGraph(t *testing.T) {
	inv := parse(t, sample+"[db]\ndb2\ndb1\n[all:vars]\nx=1\n")

	var out bytes.Buffer
	require.NoError(t, export.Graph(&out, inv.All(), false))
	assert.Equal(t, `@all:
  |--@db:
  |  |--db1
  |  |--db2
  |--@prod:
  |  |--@web:
  |  |  |--web1
  |--@ungrouped:
`, out.String())
}

func TestGraph_WithVars(t *testing.T) {
	inv := parse(t, sample)
	prod := testutil.RequireGroup(t, inv, "prod")

	var out bytes.Buffer
	require.NoError(t, export.Graph(&out, prod, true))
	assert.Equal(t, `@prod:
  |--{env = prod}
  |--@web:
  |  |--web1
  |  |  |--{http_port = 80}
`, out.String())
}

func TestGraph_CycleTerminates(t *testing.T) {
	inv := parse(t, "[a:children]\nb\n[b:children]\na\n", ini.AllowCycles())
	a := testutil.RequireGroup(t, inv, "a")

	var out bytes.Buffer
	require.NoError(t, export.Graph(&out, a, false))
	assert.Equal(t, "@a:\n  |--@b:\n  |  |--@a:\n", out.String())
}
