// Package loan computes repayment schedules and applies payments to them.
package loan

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// ErrInvalidTerms is wrapped by every terms validation failure.
var ErrInvalidTerms = errors.New("invalid loan terms")

// Terms are the inputs of a repayment schedule.
type Terms struct {
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal // percent
	TermMonths   int
	Schedule     model.ScheduleType
	StartDate    time.Time
	MaturityDate *time.Time
}

// TermsOf returns the schedule inputs recorded on a loan.
func TermsOf(l model.Loan) Terms {
	return Terms{
		Principal:    l.Principal,
		AnnualRate:   l.AnnualRate,
		TermMonths:   l.TermMonths,
		Schedule:     l.Schedule,
		StartDate:    l.StartDate,
		MaturityDate: l.MaturityDate,
	}
}

// Validate checks the terms can produce a schedule.
func (t Terms) Validate() error {
	switch {
	case !t.Principal.IsPositive():
		return fmt.Errorf("%w: principal must be greater than zero", ErrInvalidTerms)
	case t.AnnualRate.IsNegative():
		return fmt.Errorf("%w: annual rate must not be negative", ErrInvalidTerms)
	case t.TermMonths < 1:
		return fmt.Errorf("%w: term must be at least one month", ErrInvalidTerms)
	case t.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalidTerms)
	case t.Schedule != model.ScheduleMonthly && t.Schedule != model.ScheduleLumpSum:
		return fmt.Errorf("%w: unknown schedule type %q", ErrInvalidTerms, t.Schedule)
	}
	return nil
}

var (
	one          = decimal.NewFromInt(1)
	percentMonth = decimal.NewFromInt(1200)
)

// Amortize computes the full installment schedule for terms. It is pure:
// identical terms always give an identical schedule.
func Amortize(loanID string, t Terms) ([]model.Installment, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.Schedule == model.ScheduleLumpSum {
		return lumpSum(loanID, t), nil
	}
	return monthly(loanID, t), nil
}

// MonthlyPayment returns the level annuity payment, rounded to cents.
func MonthlyPayment(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	n := decimal.NewFromInt(int64(months))
	r := annualRate.Div(percentMonth)
	if r.IsZero() {
		return principal.Div(n).Round(2)
	}
	growth := one.Add(r).Pow(n)
	return principal.Mul(r).Mul(growth).Div(growth.Sub(one)).Round(2)
}

func monthly(loanID string, t Terms) []model.Installment {
	r := t.AnnualRate.Div(percentMonth)
	payment := MonthlyPayment(t.Principal, t.AnnualRate, t.TermMonths)
	remaining := t.Principal

	out := make([]model.Installment, 0, t.TermMonths)
	for i := 1; i <= t.TermMonths; i++ {
		interest := remaining.Mul(r).Round(2)
		principal := payment.Sub(interest)
		remaining = remaining.Sub(principal)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		out = append(out, newInstallment(loanID, i, AddMonths(t.StartDate, i), principal, interest))
	}
	return out
}

func lumpSum(loanID string, t Terms) []model.Installment {
	// principal * rate/100 * months/12
	interest := t.Principal.Mul(t.AnnualRate).Mul(decimal.NewFromInt(int64(t.TermMonths))).Div(percentMonth).Round(2)

	due := t.StartDate
	if t.MaturityDate != nil {
		due = *t.MaturityDate
	}
	return []model.Installment{newInstallment(loanID, 1, due, t.Principal, interest)}
}

func newInstallment(loanID string, seq int, due time.Time, principal, interest decimal.Decimal) model.Installment {
	return model.Installment{
		LoanID:    loanID,
		Seq:       seq,
		DueDate:   due,
		Principal: principal,
		Interest:  interest,
		Total:     principal.Add(interest),
		Paid:      decimal.Zero,
		Status:    model.InstallmentUnpaid,
		LateFee:   decimal.Zero,
		Tax:       decimal.Zero,
	}
}

// AddMonths adds n calendar months to t, clamping to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
