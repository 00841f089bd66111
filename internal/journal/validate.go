package journal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// BalanceError lists every way a posting set breaks double-entry rules.
type BalanceError struct {
	Problems []string
}

func (e *BalanceError) Error() string {
	return "unbalanced postings: " + strings.Join(e.Problems, "; ")
}

var hundred = decimal.NewFromInt(100)

// CheckBalanced verifies a posting set: an even number of lines arranged as
// debit/credit pairs of equal positive amounts with at most 2 decimal places,
// and equal debit and credit totals.
func CheckBalanced(postings []model.Posting) error {
	var problems []string

	if len(postings)%2 != 0 {
		problems = append(problems, fmt.Sprintf("odd number of lines (%d)", len(postings)))
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, p := range postings {
		switch p.Side {
		case model.SideDebit:
			totalDebit = totalDebit.Add(p.Amount)
		case model.SideCredit:
			totalCredit = totalCredit.Add(p.Amount)
		default:
			problems = append(problems, fmt.Sprintf("line %d: unknown side %q", i+1, p.Side))
		}

		if !p.Amount.IsPositive() {
			problems = append(problems, fmt.Sprintf("line %d: amount %s must be positive", i+1, p.Amount))
		}
		if !p.Amount.Mul(hundred).Equal(p.Amount.Mul(hundred).Floor()) {
			problems = append(problems, fmt.Sprintf("line %d: amount %s has more than 2 decimal places", i+1, p.Amount))
		}
		if p.AccountCode == "" {
			problems = append(problems, fmt.Sprintf("line %d: missing account", i+1))
		}
	}

	for i := 0; i+1 < len(postings); i += 2 {
		d, c := postings[i], postings[i+1]
		if d.Side != model.SideDebit || c.Side != model.SideCredit {
			problems = append(problems, fmt.Sprintf("lines %d-%d: not a debit/credit pair", i+1, i+2))
			continue
		}
		if !d.Amount.Equal(c.Amount) {
			problems = append(problems, fmt.Sprintf("lines %d-%d: debit %s != credit %s", i+1, i+2, d.Amount.StringFixed(2), c.Amount.StringFixed(2)))
		}
	}

	if !totalDebit.Equal(totalCredit) {
		problems = append(problems, fmt.Sprintf("debits (%s) != credits (%s)", totalDebit.StringFixed(2), totalCredit.StringFixed(2)))
	}

	if len(problems) > 0 {
		return &BalanceError{Problems: problems}
	}
	return nil
}

// Totals returns the debit and credit sums of a posting set.
func Totals(postings []model.Posting) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, p := range postings {
		if p.IsDebit() {
			debit = debit.Add(p.Amount)
		} else {
			credit = credit.Add(p.Amount)
		}
	}
	return debit, credit
}
