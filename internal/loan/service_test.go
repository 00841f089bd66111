package loan

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerengine/internal/accounts"
	"github.com/cleared-dev/ledgerengine/internal/engine"
	"github.com/cleared-dev/ledgerengine/internal/journal"
	"github.com/cleared-dev/ledgerengine/internal/metrics"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

type fixture struct {
	svc    *Service
	store  *MemoryStore
	ledger *journal.FileLedger
	m      *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ledger := journal.NewFileLedger(t.TempDir())
	m := metrics.New()
	eng := engine.New(engine.Deps{
		Directory: accounts.NewService(accounts.DefaultChart("trading")),
		Ledger:    ledger,
		Metrics:   m,
	})
	store := NewMemoryStore()
	svc := NewService(store, Options{
		Poster:                  eng,
		LateFeeDailyRatePercent: dec("0.1"),
		Metrics:                 m,
	})
	return fixture{svc: svc, store: store, ledger: ledger, m: m}
}

func threeMonthTerms() Terms {
	return Terms{
		Principal:  dec("3000000"),
		AnnualRate: decimal.Zero,
		TermMonths: 3,
		Schedule:   model.ScheduleMonthly,
		StartDate:  date(2025, 1, 1),
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l, schedule, err := f.svc.Create(ctx, threeMonthTerms(), "equipment loan")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(l.ID, "LN-"))
	assert.Equal(t, model.LoanActive, l.Status)
	require.Len(t, schedule, 3)

	got, insts, err := f.svc.Schedule(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l, got)
	assert.Equal(t, schedule, insts)
}

func TestCreate_InvalidTerms(t *testing.T) {
	f := newFixture(t)
	terms := threeMonthTerms()
	terms.TermMonths = 0

	_, _, err := f.svc.Create(context.Background(), terms, "")
	assert.ErrorIs(t, err, ErrInvalidTerms)
}

func TestSchedule_NotFound(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Schedule(context.Background(), "LN-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPay_PartialLeavesLaterInstallmentsUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, _, err := f.svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	res, err := f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("600000"), Date: date(2025, 2, 1)})
	require.NoError(t, err)
	assert.Equal(t, model.LoanActive, res.LoanStatus)
	assert.Equal(t, "JE-202502-0001", res.EntryID)

	_, insts, err := f.svc.Schedule(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InstallmentPartial, insts[0].Status)
	assert.Equal(t, "600000.00", insts[0].Paid.StringFixed(2))
	assert.Equal(t, model.InstallmentUnpaid, insts[1].Status)
	assert.True(t, insts[1].Paid.IsZero())
}

func TestPay_PostsLoanRepayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, _, err := f.svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	res, err := f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("1000000"), Date: date(2025, 2, 1)})
	require.NoError(t, err)
	require.NotNil(t, res.Posting)
	assert.Equal(t, model.TypeLoanRepayment, res.Posting.Type)
	assert.Equal(t, "2210", res.Posting.Debit.Code)
	assert.Equal(t, "1010", res.Posting.Credit.Code)
	assert.True(t, res.Posting.IsCashRelated)

	postings, err := f.ledger.ReadMonth(2025, 2)
	require.NoError(t, err)
	require.Len(t, postings, 2)
	for _, p := range postings {
		assert.Equal(t, res.EntryID, p.EntryID)
		assert.Equal(t, "1000000.00", p.Amount.StringFixed(2))
	}
}

type failingLedger struct{}

func (failingLedger) Append(context.Context, []model.Posting) (string, error) {
	return "", errors.New("disk full")
}

func TestPay_FailedCommitRestoresInstallments(t *testing.T) {
	store := NewMemoryStore()
	eng := engine.New(engine.Deps{
		Directory: accounts.NewService(accounts.DefaultChart("trading")),
		Ledger:    failingLedger{},
	})
	svc := NewService(store, Options{Poster: eng, LateFeeDailyRatePercent: dec("0.1")})
	ctx := context.Background()
	l, before, err := svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	_, err = svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("3000000"), Date: date(2025, 2, 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	got, insts, err := svc.Schedule(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanActive, got.Status)
	assert.Equal(t, before, insts)
	for _, inst := range insts {
		assert.Equal(t, model.InstallmentUnpaid, inst.Status)
		assert.True(t, inst.Paid.IsZero())
	}
}

func TestPay_SettledLoanReleasesLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, _, err := f.svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	_, err = f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("1000000"), Date: date(2025, 2, 1)})
	require.NoError(t, err)
	_, held := f.svc.locks.Load(l.ID)
	assert.True(t, held)

	_, err = f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("2000000"), Date: date(2025, 2, 1)})
	require.NoError(t, err)
	_, held = f.svc.locks.Load(l.ID)
	assert.False(t, held)

	_, err = f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("1"), Date: date(2025, 2, 1)})
	assert.ErrorIs(t, err, ErrLoanPaid)
}

func TestPay_ExactTotalSettlesLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, _, err := f.svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	res, err := f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("3000000"), Date: date(2025, 2, 1)})
	require.NoError(t, err)
	assert.Equal(t, model.LoanPaid, res.LoanStatus)

	got, insts, err := f.svc.Schedule(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanPaid, got.Status)
	for _, inst := range insts {
		assert.Equal(t, model.InstallmentPaid, inst.Status)
	}

	_, err = f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("1"), Date: date(2025, 3, 1)})
	assert.ErrorIs(t, err, ErrLoanPaid)
}

func TestPay_LateFeeRecordedOnFirstInstallment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, _, err := f.svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	// first installment due 2025-02-01, paid ten days late
	res, err := f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("1500000"), Date: date(2025, 2, 11), Tax: dec("500")})
	require.NoError(t, err)
	assert.Equal(t, "10000.00", res.LateFee.StringFixed(2))

	_, insts, err := f.svc.Schedule(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "10000.00", insts[0].LateFee.StringFixed(2))
	assert.Equal(t, "500.00", insts[0].Tax.StringFixed(2))
	assert.True(t, insts[1].LateFee.IsZero())
	assert.True(t, insts[1].Tax.IsZero())
}

func TestPay_OverpaymentReportsUnapplied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, _, err := f.svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	res, err := f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("3000100"), Date: date(2025, 2, 1)})
	require.NoError(t, err)
	assert.Equal(t, "100.00", res.Allocation.Unapplied.StringFixed(2))
	assert.Equal(t, "3000000.00", res.Allocation.Applied.StringFixed(2))
	assert.Equal(t, model.LoanPaid, res.LoanStatus)

	expected := `
# HELP ledgerengine_payments_total Loan payments allocated, by outcome.
# TYPE ledgerengine_payments_total counter
ledgerengine_payments_total{outcome="overpaid"} 1
# HELP ledgerengine_unapplied_amount_total Payment amount left unapplied because the loan was fully covered.
# TYPE ledgerengine_unapplied_amount_total counter
ledgerengine_unapplied_amount_total 100
`
	err = testutil.GatherAndCompare(f.m.Registry, strings.NewReader(expected),
		"ledgerengine_payments_total", "ledgerengine_unapplied_amount_total")
	assert.NoError(t, err)
}

func TestPay_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Pay(ctx, Payment{LoanID: "LN-x", Amount: decimal.Zero, Date: date(2025, 2, 1)})
	assert.Error(t, err)
	_, err = f.svc.Pay(ctx, Payment{LoanID: "LN-x", Amount: dec("10")})
	assert.Error(t, err)
	_, err = f.svc.Pay(ctx, Payment{LoanID: "LN-x", Amount: dec("10"), Date: date(2025, 2, 1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPay_WithoutPoster(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, Options{})
	ctx := context.Background()
	l, _, err := svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	res, err := svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("100"), Date: date(2025, 1, 20)})
	require.NoError(t, err)
	assert.Nil(t, res.Posting)
	assert.Empty(t, res.EntryID)
}

func TestPay_ConcurrentPaymentsAreSerialized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, _, err := f.svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("150000"), Date: date(2025, 1, 20)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, insts, err := f.svc.Schedule(ctx, l.ID)
	require.NoError(t, err)
	total := decimal.Zero
	for _, inst := range insts {
		total = total.Add(inst.Paid)
		assert.True(t, inst.Paid.LessThanOrEqual(inst.Total))
	}
	assert.Equal(t, "1500000.00", total.StringFixed(2))
	assert.Equal(t, model.InstallmentPaid, insts[0].Status)
	assert.Equal(t, model.InstallmentPartial, insts[1].Status)
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, _, err := f.svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)

	terms := threeMonthTerms()
	terms.TermMonths = 6
	schedule, err := f.svc.Reschedule(ctx, l.ID, terms)
	require.NoError(t, err)
	require.Len(t, schedule, 6)

	got, insts, err := f.svc.Schedule(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.TermMonths)
	assert.Equal(t, schedule, insts)
	for i, inst := range insts {
		assert.Equal(t, i+1, inst.Seq)
	}
}

func TestReschedule_RejectedAfterPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, _, err := f.svc.Create(ctx, threeMonthTerms(), "")
	require.NoError(t, err)
	_, err = f.svc.Pay(ctx, Payment{LoanID: l.ID, Amount: dec("10"), Date: date(2025, 1, 20)})
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, l.ID, threeMonthTerms())
	assert.ErrorIs(t, err, ErrHasPayments)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.CreateLoan(ctx, model.Loan{ID: "LN-1"})
	require.NoError(t, err)
	require.NoError(t, store.CreateInstallments(ctx, "LN-1", []model.Installment{
		unpaid(2, "10", "0", date(2025, 3, 1)),
		unpaid(1, "10", "0", date(2025, 2, 1)),
	}))

	insts, err := store.ListInstallments(ctx, "LN-1")
	require.NoError(t, err)
	require.Len(t, insts, 2)
	assert.Equal(t, 1, insts[0].Seq)
	insts[0].Status = model.InstallmentPaid

	again, err := store.ListInstallments(ctx, "LN-1")
	require.NoError(t, err)
	assert.Equal(t, model.InstallmentUnpaid, again[0].Status)

	_, err = store.CreateLoan(ctx, model.Loan{ID: "LN-1"})
	assert.Error(t, err)
}

func TestMemoryStore_ApplyPaymentIsAllOrNothing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.CreateLoan(ctx, model.Loan{ID: "LN-1", Status: model.LoanActive})
	require.NoError(t, err)
	require.NoError(t, store.CreateInstallments(ctx, "LN-1", []model.Installment{
		unpaid(1, "10", "0", date(2025, 2, 1)),
		unpaid(2, "10", "0", date(2025, 3, 1)),
	}))

	first := unpaid(1, "10", "0", date(2025, 2, 1))
	first.Paid, first.Status = dec("10"), model.InstallmentPaid
	missing := unpaid(7, "10", "0", date(2025, 8, 1))
	err = store.ApplyPayment(ctx, "LN-1", []model.Installment{first, missing}, model.LoanPaid)
	assert.ErrorIs(t, err, ErrNotFound)

	insts, err := store.ListInstallments(ctx, "LN-1")
	require.NoError(t, err)
	assert.Equal(t, model.InstallmentUnpaid, insts[0].Status)
	l, err := store.GetLoan(ctx, "LN-1")
	require.NoError(t, err)
	assert.Equal(t, model.LoanActive, l.Status)

	require.NoError(t, store.ApplyPayment(ctx, "LN-1", []model.Installment{first}, model.LoanActive))
	insts, err = store.ListInstallments(ctx, "LN-1")
	require.NoError(t, err)
	assert.Equal(t, model.InstallmentPaid, insts[0].Status)
}

var _ Poster = (*engine.Engine)(nil)
