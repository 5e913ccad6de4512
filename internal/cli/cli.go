package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vk/hostgrid/internal/app"
	"github.com/vk/hostgrid/internal/ini"
)

// Environment variables consulted when the matching flag is not given.
const (
	EnvInventory = "HOSTGRID_INVENTORY"
	EnvLogLevel  = "HOSTGRID_LOG_LEVEL"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// diagnosticWidth is the wrap width of rendered parse errors.
const diagnosticWidth = 100

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type rootFlags struct {
	inventory   string
	source      string
	logLevel    string
	logFormat   string
	allowCycles bool
}

// command carries state shared by the subcommands of one invocation.
type command struct {
	outW, errW io.Writer
	flags      rootFlags
	output     string
	app        *app.App
}

// NewRootCommand builds the hostgrid command tree writing command output to
// outW and logs and diagnostics to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	c := &command{outW: outW, errW: errW}

	root := &cobra.Command{
		Use:   "hostgrid",
		Short: "Inspect grouped-host inventories",
		Long: "hostgrid reads an INI host inventory, or the JSON document printed by a\n" +
			"dynamic inventory script, and shows its hosts, groups and variables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.inventory, "inventory", "i", "", "Path to the inventory file, or '-' for stdin (env "+EnvInventory+").")
	pf.StringVar(&c.flags.source, "source", "", "Inventory format. Options: 'ini' or 'json'. Detected from the file extension when empty.")
	pf.StringVar(&c.flags.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error' (env "+EnvLogLevel+").")
	pf.StringVar(&c.flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.BoolVar(&c.flags.allowCycles, "allow-cycles", false, "Accept cycles between groups instead of failing.")

	root.AddCommand(
		c.newListCommand(),
		c.newGraphCommand(),
		c.newHostCommand(),
	)
	return root
}

func (c *command) newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Short:   "Print the whole inventory",
		Args:    usageArgs(cobra.NoArgs),
		PreRunE: c.load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.List(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&c.output, "output", "o", "json", "Output format. Options: 'json' or 'yaml'.")
	return cmd
}

func (c *command) newGraphCommand() *cobra.Command {
	var vars bool
	cmd := &cobra.Command{
		Use:     "graph [group]",
		Short:   "Print the group hierarchy as a tree",
		Args:    usageArgs(cobra.MaximumNArgs(1)),
		PreRunE: c.load,
		RunE: func(cmd *cobra.Command, args []string) error {
			group := ""
			if len(args) == 1 {
				group = args[0]
			}
			return c.app.Graph(cmd.Context(), group, vars)
		},
	}
	cmd.Flags().BoolVar(&vars, "vars", false, "Show the variables of every group and host.")
	return cmd
}

func (c *command) newHostCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "host <name>",
		Short:   "Print the effective variables of a host",
		Args:    usageArgs(cobra.ExactArgs(1)),
		PreRunE: c.load,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Host(cmd.Context(), args[0])
		},
	}
}

// load builds the configuration and reads the inventory before a
// subcommand runs.
func (c *command) load(cmd *cobra.Command, _ []string) error {
	cfg, err := c.config(cmd)
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("CLI configuration resolved.", "config", cfg)

	c.app = app.NewApp(c.outW, c.errW, cfg)
	if err := c.app.Load(cmd.Context()); err != nil {
		if rerr := ini.Render(c.errW, err, diagnosticWidth, false); rerr != nil {
			return err
		}
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

// config merges flags with their environment fallbacks.
func (c *command) config(cmd *cobra.Command) (*app.Config, error) {
	flags := cmd.Flags()

	path := c.flags.inventory
	if !flags.Changed("inventory") {
		path = os.Getenv(EnvInventory)
	}
	if path == "" {
		return nil, fmt.Errorf("no inventory given: use --inventory or set %s", EnvInventory)
	}

	level := c.flags.logLevel
	if env, ok := os.LookupEnv(EnvLogLevel); ok && !flags.Changed("log-level") {
		level = env
	}

	return app.NewConfig(app.Config{
		InventoryPath: path,
		Source:        c.flags.source,
		Output:        c.output,
		LogFormat:     c.flags.logFormat,
		LogLevel:      level,
		AllowCycles:   c.flags.allowCycles,
	})
}

// usageArgs marks argument count failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &ExitError{Code: ExitUsage, Message: err.Error()}
		}
		return nil
	}
}

// Execute runs the command line args and returns an *ExitError for every
// failure that should end the process with a specific code.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}
