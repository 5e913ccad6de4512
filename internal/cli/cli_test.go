package cli_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hostgrid/internal/cli"
	"github.com/vk/hostgrid/internal/testutil"
)

const hostsINI = `[web]
web1 http_port=80

[prod:children]
web
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := cli.Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *cli.ExitError {
	t.Helper()
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestNewRootCommand(t *testing.T) {
	cmd := cli.NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{})

	assert.Equal(t, "hostgrid", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
	for _, name := range []string{"list", "graph", "host"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "command %s should exist", name)
		assert.Equal(t, name, sub.Name())
	}

	flag := cmd.PersistentFlags().Lookup("inventory")
	require.NotNil(t, flag)
	assert.Equal(t, flag, cmd.PersistentFlags().ShorthandLookup("i"))
}

func TestExecute_NoArgsShowsHelp(t *testing.T) {
	out, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "hostgrid")
}

func TestExecute_List(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", hostsINI)

	out, _, err := execute(t, "list", "-i", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"_meta": {"hostvars": {"web1": {"http_port": 80}}},
		"all": {"children": ["ungrouped", "prod"]},
		"ungrouped": {},
		"web": {"hosts": ["web1"]},
		"prod": {"children": ["web"]}
	}`, out)

	out, _, err = execute(t, "list", "--inventory", path, "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "http_port: 80")
}

func TestExecute_Graph(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", hostsINI)

	out, _, err := execute(t, "graph", "-i", path)
	require.NoError(t, err)
	assert.Equal(t, "@all:\n  |--@prod:\n  |  |--@web:\n  |  |  |--web1\n  |--@ungrouped:\n", out)

	out, _, err = execute(t, "graph", "web", "--vars", "-i", path)
	require.NoError(t, err)
	assert.Equal(t, "@web:\n  |--web1\n  |  |--{http_port = 80}\n", out)
}

func TestExecute_Host(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", hostsINI)

	out, _, err := execute(t, "host", "web1", "-i", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"http_port": 80}`, out)

	_, _, err = execute(t, "host", "ghost", "-i", path)
	exitErr := requireExitCode(t, err, cli.ExitFailure)
	assert.Contains(t, exitErr.Message, "unknown host: ghost")
}

func TestExecute_EnvironmentFallbacks(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", hostsINI)
	t.Setenv(cli.EnvInventory, path)
	t.Setenv(cli.EnvLogLevel, "debug")

	out, logs, err := execute(t, "host", "web1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"http_port": 80}`, out)
	assert.Contains(t, logs, "Inventory loaded.")

	_, logs, err = execute(t, "host", "web1", "--log-level", "error")
	require.NoError(t, err)
	assert.NotContains(t, logs, "Inventory loaded.")
}

func TestExecute_UsageErrors(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", hostsINI)
	t.Setenv(cli.EnvInventory, "")

	testCases := []struct {
		name    string
		args    []string
		message string
	}{
		{name: "unknown flag", args: []string{"list", "--bogus"}, message: "unknown flag: --bogus"},
		{name: "unknown command", args: []string{"nope"}, message: `unknown command "nope"`},
		{name: "missing host name", args: []string{"host", "-i", path}, message: "accepts 1 arg(s)"},
		{name: "missing inventory", args: []string{"list"}, message: "no inventory given"},
		{name: "bad output", args: []string{"list", "-i", path, "-o", "xml"}, message: "invalid output"},
		{name: "bad source", args: []string{"list", "-i", path, "--source", "toml"}, message: "invalid source"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			exitErr := requireExitCode(t, err, cli.ExitUsage)
			assert.Contains(t, exitErr.Message, tc.message)
		})
	}
}

func TestExecute_ParseErrorIsRendered(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", "[web]\nweb1\n[web:vars]\nbroken\n")

	out, errOut, err := execute(t, "list", "-i", path)
	exitErr := requireExitCode(t, err, cli.ExitFailure)
	assert.Empty(t, exitErr.Message)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Invalid inventory line")
	assert.Contains(t, errOut, "line 4")
}

func TestExecute_AllowCycles(t *testing.T) {
	path := testutil.WriteInventory(t, "hosts", "[a:children]\nb\n[b:children]\na\n")

	_, _, err := execute(t, "graph", "-i", path)
	requireExitCode(t, err, cli.ExitFailure)

	out, _, err := execute(t, "graph", "a", "-i", path, "--allow-cycles")
	require.NoError(t, err)
	assert.Equal(t, "@a:\n  |--@b:\n  |  |--@a:\n", out)
}
