package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func unpaid(seq int, principal, interest string, due time.Time) model.Installment {
	return newInstallment("LN-test", seq, due, dec(principal), dec(interest))
}
