package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerengine/internal/engine"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

func newPostCommand(opts *globalOptions) *cobra.Command {
	var (
		req               model.TransactionRequest
		amount, costBasis string
		date              string
		dryRun            bool
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post one transaction to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Amount, err = parseDecimal("amount", amount); err != nil {
				return err
			}
			if req.CostBasis, err = parseDecimal("cost-basis", costBasis); err != nil {
				return err
			}
			if req.Date, err = parseDate(date); err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				res, err := a.engine.Process(cmd.Context(), req)
				if err != nil {
					return describeRequestError(err)
				}
				out := cmd.OutOrStdout()
				if dryRun {
					fmt.Fprintln(out, "Dry run, nothing committed:")
					return writePostings(out, res.Postings)
				}
				entryID, err := a.engine.Commit(cmd.Context(), res)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Posted %s (%s)\n", entryID, res.Type)
				return writePostings(out, res.Postings)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Type, "type", "", "transaction type, e.g. sale_goods")
	f.StringVar(&req.PaymentMode, "mode", "", "payment mode: cash (default) or deferred")
	f.StringVar(&amount, "amount", "", "amount")
	f.StringVar(&date, "date", "", "transaction date (YYYY-MM-DD)")
	f.StringVar(&req.Category, "category", "", "optional category used to pick accounts")
	f.StringVar(&req.Description, "description", "", "description")
	f.StringVar(&req.SourceAccount, "source", "", "source account code (internal_transfer)")
	f.StringVar(&req.DestAccount, "dest", "", "destination account code (internal_transfer)")
	f.StringVar(&costBasis, "cost-basis", "", "cost of the goods sold (sale_goods)")
	f.BoolVar(&dryRun, "dry-run", false, "show the postings without committing them")

	return cmd
}

// describeRequestError lists validation violations one per line.
func describeRequestError(err error) error {
	var verr *engine.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	msg := "invalid transaction:"
	for _, v := range verr.Violations {
		msg += "\n  - " + v.String()
	}
	return errors.New(msg)
}
