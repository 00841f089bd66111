package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

const dateFormat = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func parseDecimal(flag, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q", flag, s)
	}
	return d, nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func writePostings(out io.Writer, postings []model.Posting) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "ENTRY\tACCOUNT\tNAME\tDEBIT\tCREDIT")
	for _, p := range postings {
		debit, credit := "", ""
		if p.IsDebit() {
			debit = p.Amount.StringFixed(2)
		} else {
			credit = p.Amount.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.EntryID, p.AccountCode, p.AccountName, debit, credit)
	}
	return tw.Flush()
}

func writeInstallments(out io.Writer, insts []model.Installment) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "SEQ\tDUE\tPRINCIPAL\tINTEREST\tTOTAL\tPAID\tSTATUS\tLATE FEE\tTAX")
	for _, i := range insts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i.Seq,
			i.DueDate.Format(dateFormat),
			i.Principal.StringFixed(2),
			i.Interest.StringFixed(2),
			i.Total.StringFixed(2),
			i.Paid.StringFixed(2),
			i.Status,
			i.LateFee.StringFixed(2),
			i.Tax.StringFixed(2),
		)
	}
	return tw.Flush()
}
