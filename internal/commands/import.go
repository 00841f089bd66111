package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerengine/internal/importer"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Post every transaction in a CSV file",
		Long: "Post every transaction in a CSV file. Without a file, every CSV in the\n" +
			"ledger's import/ directory is posted and moved to import/processed/.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := importer.DefaultRegistry().Lookup(format)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					_, err := importFile(cmd.Context(), out, a, parser, args[0])
					return err
				}

				paths, err := importer.Pending(a.root)
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					fmt.Fprintln(out, "No files to import.")
					return nil
				}
				for _, path := range paths {
					failed, err := importFile(cmd.Context(), out, a, parser, path)
					if err != nil {
						return err
					}
					if failed == 0 {
						if err := importer.Archive(path); err != nil {
							return err
						}
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "requests", "CSV format: requests or statement")
	return cmd
}

// importFile posts every row of path. Rows the engine rejects are reported
// and skipped; the count of failed rows is returned.
func importFile(ctx context.Context, out io.Writer, a *app, parser importer.Parser, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := parser.Parse(f)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	name := filepath.Base(path)
	posted, failed := 0, 0
	for _, row := range rows {
		_, entryID, err := a.engine.Post(ctx, row.Request)
		if err != nil {
			failed++
			a.logger.Warn("import row rejected",
				zap.String("file", name),
				zap.Int("line", row.Line),
				zap.Error(err),
			)
			fmt.Fprintf(out, "%s:%d: %v\n", name, row.Line, err)
			continue
		}
		posted++
		a.logger.Debug("imported row", zap.String("file", name), zap.Int("line", row.Line), zap.String("entry_id", entryID))
	}

	fmt.Fprintf(out, "%s: posted %d, failed %d\n", name, posted, failed)
	return failed, nil
}
