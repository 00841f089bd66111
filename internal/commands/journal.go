package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerengine/internal/journal"
)

func newJournalCommand(opts *globalOptions) *cobra.Command {
	var month string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the postings committed in a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := time.Parse("2006-01", month)
			if err != nil {
				return fmt.Errorf("invalid --month %q, want YYYY-MM", month)
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				postings, err := a.ledger.Month(cmd.Context(), period.Year(), int(period.Month()))
				if err != nil {
					return err
				}
				if asCSV {
					return journal.WritePostings(cmd.OutOrStdout(), postings)
				}
				return writePostings(cmd.OutOrStdout(), postings)
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", time.Now().Format("2006-01"), "month to show (YYYY-MM)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write journal CSV instead of a table")
	return cmd
}
