// Package cli implements the weengz-air command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrlokans/weengz-air/internal/config"
	"github.com/mrlokans/weengz-air/internal/database"
	"github.com/mrlokans/weengz-air/internal/entrypoint"
	"github.com/mrlokans/weengz-air/internal/logging"
)

type rootOptions struct {
	envFiles []string
	version  string
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	root := &cobra.Command{
		Use:           "weengz-air",
		Short:         "Bulk XML interchange for Weengz Air seat reservations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "Env files to load before reading the environment")

	root.AddCommand(
		newServeCommand(opts),
		newImportCommand(opts),
		newExportCommand(opts),
		newPurgeCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(version string, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, task workers and snapshot scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
}

func runServe(opts *rootOptions) error {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return err
	}
	return entrypoint.Run(cfg, opts.version)
}

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weengz-air %s\n", opts.version)
		},
	}
}

// openApp loads configuration and wires the application for a one-shot
// command. Logs go to the command's error stream. A non-empty dbPath
// selects that sqlite file instead of the configured database.
func openApp(cmd *cobra.Command, opts *rootOptions, dbPath string) (*entrypoint.App, error) {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Driver = database.DriverSQLite
		cfg.Database.Path = dbPath
	}

	log, err := logging.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return entrypoint.NewApp(commandContext(cmd), cfg, log)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func logger(app *entrypoint.App) logrus.FieldLogger {
	return app.Log.WithField("module", "cli")
}
