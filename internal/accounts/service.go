package accounts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// Service is an in-memory Directory over the chart of accounts.
type Service struct {
	mu     sync.RWMutex
	byCode map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byCode := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = cloneAccount(a)
	}
	return &Service{byCode: byCode}
}

// Load reads accounts/chart-of-accounts.csv under root and returns a Service.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, "accounts", "chart-of-accounts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts ordered by code.
func (s *Service) All() []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Account, 0, len(s.byCode))
	for _, a := range s.byCode {
		result = append(result, cloneAccount(a))
	}
	sortByCode(result)
	return result
}

// FindByAttributes returns all accounts matching f, ordered by code.
func (s *Service) FindByAttributes(_ context.Context, f model.Filter) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Account
	for _, a := range s.byCode {
		if a.Matches(f) {
			result = append(result, cloneAccount(a))
		}
	}
	sortByCode(result)
	return result, nil
}

// Get returns an account by code.
func (s *Service) Get(_ context.Context, code string) (model.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byCode[code]
	return cloneAccount(a), ok, nil
}

// Upsert stores acct under its code, replacing any previous record.
func (s *Service) Upsert(_ context.Context, acct model.Account) (model.Account, error) {
	if acct.Code == "" {
		return model.Account{}, fmt.Errorf("upsert account: empty code")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byCode[acct.Code] = cloneAccount(acct)
	return cloneAccount(acct), nil
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv under root.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, "chart-of-accounts.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.All()); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}

func cloneAccount(a model.Account) model.Account {
	if a.Attributes != nil {
		attrs := make(map[string]string, len(a.Attributes))
		for k, v := range a.Attributes {
			attrs[k] = v
		}
		a.Attributes = attrs
	}
	return a
}

func sortByCode(accts []model.Account) {
	sort.Slice(accts, func(i, j int) bool { return accts[i].Code < accts[j].Code })
}
