package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mrlokans/weengz-air/internal/services"
)

type importOptions struct {
	file   string
	dbPath string
	dryRun bool
}

func newImportCommand(root *rootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import --file <path>",
		Short: "Import users, seats and reservations from an XML document",
		Long: `Import reads a compact (flightReservation/flightSeat) or sectioned
(Usuarios/Asientos/Reservaciones) XML document and reconciles it with the
database. Records that fail are counted and reported; they do not stop the
import.`,
		Example: `  weengz-air import --file reservas.xml
  weengz-air import --file reservas.xml --dry-run
  cat reservas.xml | weengz-air import --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "XML document to import, - for stdin (required)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "sqlite database file (overrides DATABASE_PATH)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would be imported without making changes")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(cmd *cobra.Command, root *rootOptions, opts *importOptions) error {
	in, closeIn, err := openInput(cmd, opts.file)
	if err != nil {
		return err
	}
	defer closeIn()

	app, err := openApp(cmd, root, opts.dbPath)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := services.WithOrigin(commandContext(cmd), "cli")
	out := cmd.OutOrStdout()

	if opts.dryRun {
		dialect, plans, err := app.Interchange.Plan(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Format: %s\n", dialect)
		if len(plans) == 0 {
			fmt.Fprintln(out, "Nothing to import.")
		}
		for _, plan := range plans {
			fmt.Fprintf(out, "Stage %s: %d operations\n", plan.Name, plan.Operations)
			kinds := make([]string, 0, len(plan.ByKind))
			for kind := range plan.ByKind {
				kinds = append(kinds, kind)
			}
			sort.Strings(kinds)
			for _, kind := range kinds {
				fmt.Fprintf(out, "  %s: %d\n", kind, plan.ByKind[kind])
			}
		}
		return nil
	}

	summary, err := app.Interchange.Import(ctx, in)
	if errors.Is(err, services.ErrParse) {
		return services.ErrParse
	}
	if summary.Message != "" {
		fmt.Fprintln(out, summary.Message)
	}
	for _, f := range summary.Failures {
		fmt.Fprintf(out, "  %s %s: %s\n", f.Kind, f.Key, f.Err)
	}
	if err != nil {
		return err
	}
	if !summary.Recognized {
		return errors.New("unrecognized XML format")
	}
	logger(app).WithField("payload_ref", summary.PayloadRef).Debug("Payload archived")
	return nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
