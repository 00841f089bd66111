package loan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// ErrNotFound is returned for an unknown loan.
var ErrNotFound = errors.New("loan not found")

// Store persists loans and their installments.
type Store interface {
	CreateLoan(ctx context.Context, l model.Loan) (model.Loan, error)
	GetLoan(ctx context.Context, loanID string) (model.Loan, error)
	// CreateInstallments replaces the loan's whole installment set atomically.
	CreateInstallments(ctx context.Context, loanID string, schedule []model.Installment) error
	// ListInstallments returns the loan's installments ordered by sequence.
	ListInstallments(ctx context.Context, loanID string) ([]model.Installment, error)
	// ReplaceSchedule stores new terms on the loan and replaces its
	// installments. Either both are written or neither is.
	ReplaceSchedule(ctx context.Context, l model.Loan, schedule []model.Installment) error
	// ApplyPayment writes the given installments and the loan status
	// atomically. An unknown installment fails the whole write.
	ApplyPayment(ctx context.Context, loanID string, updated []model.Installment, status model.LoanStatus) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu           sync.RWMutex
	loans        map[string]model.Loan
	installments map[string][]model.Installment
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		loans:        make(map[string]model.Loan),
		installments: make(map[string][]model.Installment),
	}
}

func (s *MemoryStore) CreateLoan(_ context.Context, l model.Loan) (model.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[l.ID]; ok {
		return model.Loan{}, fmt.Errorf("loan %s already exists", l.ID)
	}
	s.loans[l.ID] = l
	return l, nil
}

func (s *MemoryStore) GetLoan(_ context.Context, loanID string) (model.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loans[loanID]
	if !ok {
		return model.Loan{}, fmt.Errorf("%w: %s", ErrNotFound, loanID)
	}
	return l, nil
}

func (s *MemoryStore) CreateInstallments(_ context.Context, loanID string, schedule []model.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[loanID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, loanID)
	}
	insts := make([]model.Installment, len(schedule))
	copy(insts, schedule)
	sort.Slice(insts, func(i, j int) bool { return insts[i].Seq < insts[j].Seq })
	s.installments[loanID] = insts
	return nil
}

func (s *MemoryStore) ListInstallments(_ context.Context, loanID string) ([]model.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	insts := s.installments[loanID]
	out := make([]model.Installment, len(insts))
	copy(out, insts)
	return out, nil
}

func (s *MemoryStore) ReplaceSchedule(_ context.Context, l model.Loan, schedule []model.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[l.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, l.ID)
	}
	insts := make([]model.Installment, len(schedule))
	copy(insts, schedule)
	sort.Slice(insts, func(i, j int) bool { return insts[i].Seq < insts[j].Seq })
	s.loans[l.ID] = l
	s.installments[l.ID] = insts
	return nil
}

func (s *MemoryStore) ApplyPayment(_ context.Context, loanID string, updated []model.Installment, status model.LoanStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[loanID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, loanID)
	}

	next := make([]model.Installment, len(s.installments[loanID]))
	copy(next, s.installments[loanID])
	for _, inst := range updated {
		i := sort.Search(len(next), func(i int) bool { return next[i].Seq >= inst.Seq })
		if i == len(next) || next[i].Seq != inst.Seq {
			return fmt.Errorf("%w: installment %d of %s", ErrNotFound, inst.Seq, loanID)
		}
		next[i] = inst
	}

	l.Status = status
	s.loans[loanID] = l
	s.installments[loanID] = next
	return nil
}
