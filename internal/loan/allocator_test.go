package loan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

func threeInstallments() []model.Installment {
	return []model.Installment{
		unpaid(1, "900000", "100000", date(2025, 2, 1)),
		unpaid(2, "910000", "90000", date(2025, 3, 1)),
		unpaid(3, "920000", "80000", date(2025, 4, 1)),
	}
}

func TestAllocate_Partial(t *testing.T) {
	insts := threeInstallments()
	alloc := Allocate(insts, dec("600000"), decimal.Zero, decimal.Zero)

	require.Len(t, alloc.Updated, 1)
	first := alloc.Updated[0]
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, model.InstallmentPartial, first.Status)
	assert.Equal(t, "600000.00", first.Paid.StringFixed(2))
	assert.Equal(t, "600000.00", alloc.Applied.StringFixed(2))
	assert.True(t, alloc.Unapplied.IsZero())

	// the input slice is not mutated
	assert.Equal(t, model.InstallmentUnpaid, insts[0].Status)
	assert.False(t, alloc.Settles(insts))
}

func TestAllocate_ExactTotalSettlesEverything(t *testing.T) {
	insts := threeInstallments()
	alloc := Allocate(insts, dec("3000000"), decimal.Zero, decimal.Zero)

	require.Len(t, alloc.Updated, 3)
	for _, inst := range alloc.Updated {
		assert.Equal(t, model.InstallmentPaid, inst.Status)
		assert.True(t, inst.Paid.Equal(inst.Total))
	}
	assert.True(t, alloc.Unapplied.IsZero())
	assert.True(t, alloc.Settles(insts))
}

func TestAllocate_SpansInstallmentsInOrder(t *testing.T) {
	insts := threeInstallments()
	alloc := Allocate(insts, dec("1500000"), decimal.Zero, decimal.Zero)

	require.Len(t, alloc.Updated, 2)
	assert.Equal(t, model.InstallmentPaid, alloc.Updated[0].Status)
	assert.Equal(t, 2, alloc.Updated[1].Seq)
	assert.Equal(t, model.InstallmentPartial, alloc.Updated[1].Status)
	assert.Equal(t, "500000.00", alloc.Updated[1].Paid.StringFixed(2))
}

func TestAllocate_NeverSkipsEarlierInstallment(t *testing.T) {
	insts := threeInstallments()
	// listed out of order; seq 1 partially paid already
	insts[0].Paid = dec("400000")
	insts[0].Status = model.InstallmentPartial
	insts[0], insts[2] = insts[2], insts[0]

	alloc := Allocate(insts, dec("700000"), decimal.Zero, decimal.Zero)
	require.Len(t, alloc.Updated, 2)
	assert.Equal(t, 1, alloc.Updated[0].Seq)
	assert.Equal(t, model.InstallmentPaid, alloc.Updated[0].Status)
	assert.Equal(t, 2, alloc.Updated[1].Seq)
	assert.Equal(t, "100000.00", alloc.Updated[1].Paid.StringFixed(2))
}

func TestAllocate_SkipsPaidInstallments(t *testing.T) {
	insts := threeInstallments()
	insts[0].Paid = insts[0].Total
	insts[0].Status = model.InstallmentPaid

	alloc := Allocate(insts, dec("100"), decimal.Zero, decimal.Zero)
	require.Len(t, alloc.Updated, 1)
	assert.Equal(t, 2, alloc.Updated[0].Seq)
}

func TestAllocate_FeeAndTaxOnFirstInstallmentOnly(t *testing.T) {
	insts := threeInstallments()
	alloc := Allocate(insts, dec("2500000"), dec("10000"), dec("2500"))

	require.Len(t, alloc.Updated, 3)
	assert.Equal(t, "10000.00", alloc.Updated[0].LateFee.StringFixed(2))
	assert.Equal(t, "2500.00", alloc.Updated[0].Tax.StringFixed(2))
	for _, inst := range alloc.Updated[1:] {
		assert.True(t, inst.LateFee.IsZero())
		assert.True(t, inst.Tax.IsZero())
	}
}

func TestAllocate_OverpaymentReportsUnapplied(t *testing.T) {
	insts := threeInstallments()
	alloc := Allocate(insts, dec("3000250.50"), decimal.Zero, decimal.Zero)

	assert.Equal(t, "3000000.00", alloc.Applied.StringFixed(2))
	assert.Equal(t, "250.50", alloc.Unapplied.StringFixed(2))
	assert.True(t, alloc.Settles(insts))
}

func TestAllocate_NothingOutstanding(t *testing.T) {
	insts := threeInstallments()
	for i := range insts {
		insts[i].Paid = insts[i].Total
		insts[i].Status = model.InstallmentPaid
	}
	alloc := Allocate(insts, dec("50"), decimal.Zero, decimal.Zero)
	assert.Empty(t, alloc.Updated)
	assert.True(t, alloc.Applied.IsZero())
	assert.Equal(t, "50.00", alloc.Unapplied.StringFixed(2))
}
