package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/weengz-air/internal/exporters"
	"github.com/mrlokans/weengz-air/internal/services"
)

type exportOptions struct {
	output string
	dbPath string
}

func newExportCommand(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every active reservation to an XML document",
		Example: `  weengz-air export
  weengz-air export --output backup.xml
  weengz-air export --output -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", exporters.ExportFilename, "Output file, - for stdout")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "sqlite database file (overrides DATABASE_PATH)")

	return cmd
}

func runExport(cmd *cobra.Command, root *rootOptions, opts *exportOptions) error {
	app, err := openApp(cmd, root, opts.dbPath)
	if err != nil {
		return err
	}
	defer app.Close()

	file, err := app.Interchange.Export(services.WithOrigin(commandContext(cmd), "cli"))
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := cmd.OutOrStdout().Write(file.Data)
		return err
	}

	if err := os.WriteFile(opts.output, file.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Written to %s\n", file.Message, opts.output)
	return nil
}
