package journal

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

func acct(code, name string) model.Account {
	return model.Account{Code: code, Name: name, Active: true}
}

func pair(debitCode, creditCode, amount string) []model.Posting {
	return BuildLines(Lines{
		Debit:  acct(debitCode, "Debit "+debitCode),
		Credit: acct(creditCode, "Credit "+creditCode),
		Amount: dec(amount),
		Date:   date(2025, 1, 15),
		Type:   model.TypeCashReceipt,
	})
}
