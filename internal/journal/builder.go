// Package journal turns resolved accounts into balanced posting lines and
// keeps a CSV journal of committed entries.
package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// CostPair is the secondary cost-of-goods pair of a goods sale.
type CostPair struct {
	Debit  model.Account
	Credit model.Account
	Amount decimal.Decimal
}

// Lines holds the inputs for BuildLines.
type Lines struct {
	Debit       model.Account
	Credit      model.Account
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Type        model.TransactionType
	Cost        *CostPair
}

// BuildLines returns the main debit/credit pair followed by the cost pair, if any.
func BuildLines(l Lines) []model.Posting {
	out := make([]model.Posting, 0, 4)
	out = appendPair(out, l, l.Debit, l.Credit, l.Amount)
	if l.Cost != nil {
		out = appendPair(out, l, l.Cost.Debit, l.Cost.Credit, l.Cost.Amount)
	}
	return out
}

func appendPair(out []model.Posting, l Lines, debit, credit model.Account, amount decimal.Decimal) []model.Posting {
	line := func(acct model.Account, side model.Side) model.Posting {
		return model.Posting{
			AccountCode: acct.Code,
			AccountName: acct.Name,
			Side:        side,
			Amount:      amount,
			Description: l.Description,
			Date:        l.Date,
			Type:        l.Type,
		}
	}
	return append(out, line(debit, model.SideDebit), line(credit, model.SideCredit))
}
