package loan

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// Allocation is the plan for applying one payment.
type Allocation struct {
	// Updated holds the installments the payment touched, in sequence order,
	// with their new paid-to-date and status.
	Updated   []model.Installment
	Applied   decimal.Decimal
	Unapplied decimal.Decimal
}

// Settles reports whether the plan leaves nothing outstanding among the given
// installments.
func (a Allocation) Settles(installments []model.Installment) bool {
	updated := make(map[int]model.Installment, len(a.Updated))
	for _, inst := range a.Updated {
		updated[inst.Seq] = inst
	}
	for _, inst := range installments {
		if u, ok := updated[inst.Seq]; ok {
			inst = u
		}
		if inst.Status != model.InstallmentPaid {
			return false
		}
	}
	return true
}

// Allocate applies amount to the outstanding installments strictly in
// sequence order. Each installment is paid in full before the next is touched;
// the first short one becomes partial and allocation stops. The late fee and
// tax are recorded on the first installment touched. Whatever exceeds the
// total owed is returned as Unapplied.
func Allocate(installments []model.Installment, amount, lateFee, tax decimal.Decimal) Allocation {
	outstanding := make([]model.Installment, 0, len(installments))
	for _, inst := range installments {
		if inst.Outstanding() {
			outstanding = append(outstanding, inst)
		}
	}
	sort.Slice(outstanding, func(i, j int) bool { return outstanding[i].Seq < outstanding[j].Seq })

	alloc := Allocation{Applied: decimal.Zero, Unapplied: decimal.Zero}
	remaining := amount
	for i, inst := range outstanding {
		if !remaining.IsPositive() {
			break
		}
		if i == 0 {
			inst.LateFee = inst.LateFee.Add(lateFee)
			inst.Tax = inst.Tax.Add(tax)
		}

		owed := inst.Owed()
		if remaining.GreaterThanOrEqual(owed) {
			inst.Paid = inst.Total
			inst.Status = model.InstallmentPaid
			remaining = remaining.Sub(owed)
			alloc.Applied = alloc.Applied.Add(owed)
		} else {
			inst.Paid = inst.Paid.Add(remaining)
			inst.Status = model.InstallmentPartial
			alloc.Applied = alloc.Applied.Add(remaining)
			remaining = decimal.Zero
		}
		alloc.Updated = append(alloc.Updated, inst)
	}

	if remaining.IsPositive() {
		alloc.Unapplied = remaining
	}
	return alloc
}
