package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/weengz-air/internal/services"
)

type purgeOptions struct {
	confirm string
	dbPath  string
}

func newPurgeCommand(root *rootOptions) *cobra.Command {
	opts := &purgeOptions{}

	cmd := &cobra.Command{
		Use:     "purge --confirm " + services.PurgeConfirmation,
		Short:   "Delete every reservation and free all seats",
		Long:    "Purge deletes all reservations and their modification history and marks every seat free. Users are kept.",
		Example: "  weengz-air purge --confirm " + services.PurgeConfirmation,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPurge(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.confirm, "confirm", "", "Type "+services.PurgeConfirmation+" to confirm")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "sqlite database file (overrides DATABASE_PATH)")

	return cmd
}

func runPurge(cmd *cobra.Command, root *rootOptions, opts *purgeOptions) error {
	app, err := openApp(cmd, root, opts.dbPath)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Interchange.Purge(services.WithOrigin(commandContext(cmd), "cli"), opts.confirm)
	if errors.Is(err, services.ErrPurgeNotConfirmed) {
		return fmt.Errorf("%w: pass --confirm %s", err, services.PurgeConfirmation)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d reservations and %d modifications; %d seats freed.\n",
		result.Reservaciones, result.Modificaciones, result.SeatsFreed)
	return nil
}
