package loan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerengine/internal/engine"
	"github.com/cleared-dev/ledgerengine/internal/id"
	"github.com/cleared-dev/ledgerengine/internal/logging"
	"github.com/cleared-dev/ledgerengine/internal/metrics"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

var (
	// ErrLoanPaid is returned when paying a loan that is already settled.
	ErrLoanPaid = errors.New("loan is already paid")
	// ErrHasPayments is returned when rescheduling a loan that has received payments.
	ErrHasPayments = errors.New("loan has recorded payments")
)

// Poster produces and commits the cash posting of a payment.
type Poster interface {
	Process(ctx context.Context, req model.TransactionRequest) (*engine.Result, error)
	Commit(ctx context.Context, res *engine.Result) (string, error)
}

// Service creates loans and records payments against them. Payments for the
// same loan are serialized by a per-loan mutex; the mutex is dropped once the
// loan is paid, so only loans still being repaid hold one.
type Service struct {
	store       Store
	poster      Poster
	lateFeeRate decimal.Decimal
	logger      *zap.Logger
	metrics     *metrics.Metrics

	locks sync.Map // loan ID -> *sync.Mutex
}

// Options configure a Service. Poster may be nil to skip payment postings.
type Options struct {
	Poster                  Poster
	LateFeeDailyRatePercent decimal.Decimal
	Logger                  *zap.Logger
	Metrics                 *metrics.Metrics
}

// NewService creates a loan Service.
func NewService(store Store, opts Options) *Service {
	return &Service{
		store:       store,
		poster:      opts.Poster,
		lateFeeRate: opts.LateFeeDailyRatePercent,
		logger:      logging.OrNop(opts.Logger),
		metrics:     opts.Metrics,
	}
}

func (s *Service) lock(loanID string) func() {
	v, _ := s.locks.LoadOrStore(loanID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create records a new loan and its amortization schedule.
func (s *Service) Create(ctx context.Context, t Terms, description string) (model.Loan, []model.Installment, error) {
	loanID := id.NewLoanID()
	schedule, err := Amortize(loanID, t)
	if err != nil {
		return model.Loan{}, nil, err
	}

	l, err := s.store.CreateLoan(ctx, model.Loan{
		ID:           loanID,
		Principal:    t.Principal,
		AnnualRate:   t.AnnualRate,
		TermMonths:   t.TermMonths,
		Schedule:     t.Schedule,
		StartDate:    t.StartDate,
		MaturityDate: t.MaturityDate,
		Status:       model.LoanActive,
		Description:  description,
	})
	if err != nil {
		return model.Loan{}, nil, fmt.Errorf("creating loan: %w", err)
	}
	if err := s.store.CreateInstallments(ctx, loanID, schedule); err != nil {
		return model.Loan{}, nil, fmt.Errorf("creating installments: %w", err)
	}

	s.logger.Info("created loan",
		zap.String("loan_id", loanID),
		zap.String("schedule", string(t.Schedule)),
		zap.Int("installments", len(schedule)),
	)
	return l, schedule, nil
}

// Reschedule recomputes the schedule from new terms and replaces the full
// installment set. Loans with any payment recorded cannot be rescheduled.
func (s *Service) Reschedule(ctx context.Context, loanID string, t Terms) ([]model.Installment, error) {
	defer s.lock(loanID)()

	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	current, err := s.store.ListInstallments(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("listing installments: %w", err)
	}
	for _, inst := range current {
		if inst.Paid.IsPositive() {
			return nil, fmt.Errorf("rescheduling %s: %w", loanID, ErrHasPayments)
		}
	}

	schedule, err := Amortize(loanID, t)
	if err != nil {
		return nil, err
	}

	l.Principal, l.AnnualRate, l.TermMonths = t.Principal, t.AnnualRate, t.TermMonths
	l.Schedule, l.StartDate, l.MaturityDate = t.Schedule, t.StartDate, t.MaturityDate
	if err := s.store.ReplaceSchedule(ctx, l, schedule); err != nil {
		return nil, fmt.Errorf("replacing schedule: %w", err)
	}
	return schedule, nil
}

// Schedule returns a loan's installments in sequence order.
func (s *Service) Schedule(ctx context.Context, loanID string) (model.Loan, []model.Installment, error) {
	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return model.Loan{}, nil, err
	}
	insts, err := s.store.ListInstallments(ctx, loanID)
	if err != nil {
		return model.Loan{}, nil, fmt.Errorf("listing installments: %w", err)
	}
	return l, insts, nil
}

// Payment is one incoming payment for a loan.
type Payment struct {
	LoanID string
	Amount decimal.Decimal
	Date   time.Time
	Tax    decimal.Decimal
}

// PaymentResult reports how a payment was applied.
type PaymentResult struct {
	Allocation Allocation
	LateFee    decimal.Decimal
	Tax        decimal.Decimal
	LoanStatus model.LoanStatus
	EntryID    string
	Posting    *engine.Result
}

// Pay applies a payment: computes the late fee on the first outstanding
// installment, allocates the amount in sequence order, builds the cash posting
// for the applied amount, persists the installment changes and commits the
// posting. Any excess over the outstanding total is returned unapplied.
//
// If the posting cannot be committed the installments and loan status are
// put back as they were before the payment.
func (s *Service) Pay(ctx context.Context, p Payment) (*PaymentResult, error) {
	if !p.Amount.IsPositive() {
		return nil, errors.New("payment amount must be greater than zero")
	}
	if p.Date.IsZero() {
		return nil, errors.New("payment date is required")
	}

	defer s.lock(p.LoanID)()

	l, err := s.store.GetLoan(ctx, p.LoanID)
	if err != nil {
		return nil, err
	}
	if l.Status == model.LoanPaid {
		return nil, fmt.Errorf("paying %s: %w", p.LoanID, ErrLoanPaid)
	}

	all, err := s.store.ListInstallments(ctx, p.LoanID)
	if err != nil {
		return nil, fmt.Errorf("listing installments: %w", err)
	}

	lateFee := decimal.Zero
	for _, inst := range all {
		if inst.Outstanding() {
			lateFee = LateFee(inst, p.Date, s.lateFeeRate)
			break
		}
	}

	alloc := Allocate(all, p.Amount, lateFee, p.Tax)
	result := &PaymentResult{
		Allocation: alloc,
		LateFee:    lateFee,
		Tax:        p.Tax,
		LoanStatus: l.Status,
	}

	if s.poster != nil && alloc.Applied.IsPositive() {
		result.Posting, err = s.poster.Process(ctx, model.TransactionRequest{
			Type:        string(model.TypeLoanRepayment),
			PaymentMode: string(model.PaymentCash),
			Amount:      alloc.Applied,
			Date:        p.Date,
			Description: "Loan payment " + p.LoanID,
		})
		if err != nil {
			return nil, fmt.Errorf("building payment posting: %w", err)
		}
	}

	status := l.Status
	if alloc.Settles(all) {
		status = model.LoanPaid
	}
	if err := s.store.ApplyPayment(ctx, p.LoanID, alloc.Updated, status); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}
	result.LoanStatus = status

	if result.Posting != nil {
		result.EntryID, err = s.poster.Commit(ctx, result.Posting)
		if err != nil {
			err = fmt.Errorf("committing payment posting: %w", err)
			if rerr := s.store.ApplyPayment(ctx, p.LoanID, previous(all, alloc.Updated), l.Status); rerr != nil {
				s.logger.Error("restoring installments after failed commit",
					zap.String("loan_id", p.LoanID),
					zap.Error(rerr),
				)
				return nil, errors.Join(err, fmt.Errorf("restoring installments: %w", rerr))
			}
			return nil, err
		}
	}
	if status == model.LoanPaid {
		s.locks.Delete(p.LoanID)
	}

	outcome := "partial"
	switch {
	case alloc.Unapplied.IsPositive():
		outcome = "overpaid"
		s.logger.Warn("payment exceeds outstanding balance",
			zap.String("loan_id", p.LoanID),
			zap.String("unapplied", alloc.Unapplied.StringFixed(2)),
		)
	case result.LoanStatus == model.LoanPaid:
		outcome = "settled"
	}
	s.metrics.PaymentAllocated(outcome, alloc.Unapplied)
	s.logger.Info("applied loan payment",
		zap.String("loan_id", p.LoanID),
		zap.String("applied", alloc.Applied.StringFixed(2)),
		zap.Int("installments", len(alloc.Updated)),
		zap.String("late_fee", lateFee.StringFixed(2)),
	)
	return result, nil
}

// previous returns the stored state of every installment in updated.
func previous(all, updated []model.Installment) []model.Installment {
	bySeq := make(map[int]model.Installment, len(all))
	for _, inst := range all {
		bySeq[inst.Seq] = inst
	}
	out := make([]model.Installment, 0, len(updated))
	for _, inst := range updated {
		out = append(out, bySeq[inst.Seq])
	}
	return out
}
