package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerengine/internal/loan"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

func newLoanCommand(opts *globalOptions) *cobra.Command {
	loanCmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan schedules and payments",
	}
	loanCmd.AddCommand(
		newLoanCreateCommand(opts),
		newLoanRescheduleCommand(opts),
		newLoanScheduleCommand(opts),
		newLoanPayCommand(opts),
	)
	return loanCmd
}

// termsFlags are the flags shared by create and reschedule. Only flags given
// on the command line override the base terms.
type termsFlags struct {
	principal string
	rate      string
	term      int
	schedule  string
	start     string
	maturity  string
}

func (f *termsFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.principal, "principal", "", "principal amount")
	fs.StringVar(&f.rate, "rate", "", "annual interest rate in percent")
	fs.IntVar(&f.term, "term", 0, "term in months")
	fs.StringVar(&f.schedule, "schedule", "", "monthly or lump_sum (new loans default to monthly)")
	fs.StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	fs.StringVar(&f.maturity, "maturity", "", "maturity date for lump_sum loans (YYYY-MM-DD)")
}

func (f *termsFlags) merge(cmd *cobra.Command, t loan.Terms) (loan.Terms, error) {
	changed := cmd.Flags().Changed
	var err error
	if changed("principal") {
		if t.Principal, err = parseDecimal("principal", f.principal); err != nil {
			return t, err
		}
	}
	if changed("rate") {
		if t.AnnualRate, err = parseDecimal("rate", f.rate); err != nil {
			return t, err
		}
	}
	if changed("term") {
		t.TermMonths = f.term
	}
	if changed("schedule") {
		t.Schedule = model.ScheduleType(f.schedule)
	}
	if changed("start") {
		if t.StartDate, err = parseDate(f.start); err != nil {
			return t, err
		}
	}
	if changed("maturity") {
		m, err := parseDate(f.maturity)
		if err != nil {
			return t, err
		}
		t.MaturityDate = &m
	}
	return t, nil
}

func newLoanCreateCommand(opts *globalOptions) *cobra.Command {
	var tf termsFlags
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a loan and its repayment schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			terms, err := tf.merge(cmd, loan.Terms{Schedule: model.ScheduleMonthly})
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app) error {
				l, schedule, err := a.loans.Create(cmd.Context(), terms, description)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created loan %s\n", l.ID)
				return writeInstallments(out, schedule)
			})
		},
	}

	tf.register(cmd)
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

func newLoanRescheduleCommand(opts *globalOptions) *cobra.Command {
	var tf termsFlags

	cmd := &cobra.Command{
		Use:   "reschedule <loan-id>",
		Short: "Replace a loan's schedule with one computed from new terms",
		Long: "Replace a loan's schedule with one computed from new terms. Terms not\n" +
			"given as flags keep the loan's current values.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				current, _, err := a.loans.Schedule(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				terms, err := tf.merge(cmd, loan.TermsOf(current))
				if err != nil {
					return err
				}
				schedule, err := a.loans.Reschedule(cmd.Context(), args[0], terms)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Rescheduled loan %s\n", args[0])
				return writeInstallments(out, schedule)
			})
		},
	}

	tf.register(cmd)
	return cmd
}

func newLoanScheduleCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <loan-id>",
		Short: "Show a loan's installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				l, insts, err := a.loans.Schedule(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				writeLoanSummary(out, l)
				return writeInstallments(out, insts)
			})
		},
	}
}

func newLoanPayCommand(opts *globalOptions) *cobra.Command {
	var amount, date, tax string

	cmd := &cobra.Command{
		Use:   "pay <loan-id>",
		Short: "Apply a payment to a loan's outstanding installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := loan.Payment{LoanID: args[0]}
			var err error
			if p.Amount, err = parseDecimal("amount", amount); err != nil {
				return err
			}
			if p.Tax, err = parseDecimal("tax", tax); err != nil {
				return err
			}
			if p.Date, err = parseDate(date); err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				res, err := a.loans.Pay(cmd.Context(), p)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Applied %s to %d installment(s)", res.Allocation.Applied.StringFixed(2), len(res.Allocation.Updated))
				if res.EntryID != "" {
					fmt.Fprintf(out, ", posted %s", res.EntryID)
				}
				fmt.Fprintln(out)
				if res.LateFee.IsPositive() {
					fmt.Fprintf(out, "Late fee: %s\n", res.LateFee.StringFixed(2))
				}
				if res.Allocation.Unapplied.IsPositive() {
					fmt.Fprintf(out, "Unapplied: %s\n", res.Allocation.Unapplied.StringFixed(2))
				}
				fmt.Fprintf(out, "Loan status: %s\n", res.LoanStatus)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "payment amount")
	cmd.Flags().StringVar(&date, "date", "", "payment date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&tax, "tax", "", "tax included in the payment")
	return cmd
}

func writeLoanSummary(out io.Writer, l model.Loan) {
	fmt.Fprintf(out, "Loan %s: %s at %s%% over %d months (%s), status %s\n",
		l.ID, l.Principal.StringFixed(2), l.AnnualRate.String(), l.TermMonths, l.Schedule, l.Status)
}
