package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the debit/credit indicator of a posting.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Posting is one debit or credit line in a ledger entry.
type Posting struct {
	EntryID     string // assigned on commit
	AccountCode string
	AccountName string
	Side        Side
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Type        TransactionType
}

// IsDebit reports whether the posting is on the debit side.
func (p Posting) IsDebit() bool {
	return p.Side == SideDebit
}
