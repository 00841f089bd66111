package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

var hundred = decimal.NewFromInt(100)

// DaysLate returns the calendar days from due to paid, or 0 when paid on or
// before the due date. Times of day and DST shifts are ignored.
func DaysLate(due, paid time.Time) int {
	d := calendarDay(paid).Sub(calendarDay(due))
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// calendarDay maps t to UTC midnight of its own year, month and day.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LateFee is (principal + interest) * dailyRatePercent/100 * days late,
// rounded to cents.
func LateFee(inst model.Installment, paid time.Time, dailyRatePercent decimal.Decimal) decimal.Decimal {
	days := DaysLate(inst.DueDate, paid)
	if days == 0 {
		return decimal.Zero
	}
	base := inst.Principal.Add(inst.Interest)
	return base.Mul(dailyRatePercent).Div(hundred).Mul(decimal.NewFromInt(int64(days))).Round(2)
}
