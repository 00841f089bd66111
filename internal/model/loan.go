package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleType selects how a loan is repaid.
type ScheduleType string

const (
	ScheduleMonthly ScheduleType = "monthly"
	ScheduleLumpSum ScheduleType = "lump_sum"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanActive LoanStatus = "active"
	LoanPaid   LoanStatus = "paid"
)

// InstallmentStatus is the lifecycle state of an installment.
type InstallmentStatus string

const (
	InstallmentUnpaid  InstallmentStatus = "unpaid"
	InstallmentPartial InstallmentStatus = "partial"
	InstallmentPaid    InstallmentStatus = "paid"
)

// Loan is a borrowing repaid through a schedule of installments.
type Loan struct {
	ID           string
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal // percent, e.g. 12 for 12%
	TermMonths   int
	Schedule     ScheduleType
	StartDate    time.Time
	MaturityDate *time.Time
	Status       LoanStatus
	Description  string
}

// Installment is one scheduled repayment of a loan.
type Installment struct {
	LoanID    string
	Seq       int
	DueDate   time.Time
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Status    InstallmentStatus
	LateFee   decimal.Decimal
	Tax       decimal.Decimal
}

// Owed returns the amount still due on the installment.
func (i Installment) Owed() decimal.Decimal {
	return i.Total.Sub(i.Paid)
}

// Outstanding reports whether the installment still needs payment.
func (i Installment) Outstanding() bool {
	return i.Status == InstallmentUnpaid || i.Status == InstallmentPartial
}
