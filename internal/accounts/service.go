package accounts

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cleared-dev/books/internal/id"
	"github.com/cleared-dev/books/internal/model"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrDuplicateCode = errors.New("duplicate account code")
	ErrSystemAccount = errors.New("system accounts cannot be deleted")
)

// Service is the chart of accounts registry, always ordered by code.
type Service struct {
	mu       sync.RWMutex
	accounts []model.Account
	byID     map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	s := &Service{byID: make(map[string]model.Account, len(accounts))}
	for _, a := range accounts {
		s.byID[a.ID] = a
		s.accounts = append(s.accounts, a)
	}
	sortByCode(s.accounts)
	return s
}

// Load reads accounts/chart-of-accounts.csv from a books root and returns a Service.
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
	return slices.Clone(s.accounts)
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// ByCode returns the account with the given numeric code.
func (s *Service) ByCode(code int) (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Code == code {
			return a, true
		}
	}
	return model.Account{}, false
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// MatchExpense finds the expense account for a category name. "Rent" matches
// both "Rent" and "Rent Expense"; comparison ignores case and surrounding space.
func (s *Service) MatchExpense(category string) (model.Account, bool) {
	want := normalize(category)
	if want == "" {
		return model.Account{}, false
	}
	for _, a := range s.ByType(model.AccountTypeExpense) {
		name := normalize(a.Name)
		if name == want || strings.TrimSuffix(name, " expense") == want || strings.TrimSuffix(name, " expenses") == want {
			return a, true
		}
	}
	return model.Account{}, false
}

// Add registers a new account. An empty ID is generated.
func (s *Service) Add(acct model.Account) (model.Account, error) {
	if strings.TrimSpace(acct.Name) == "" {
		return model.Account{}, errors.New("account name is required")
	}
	if !acct.Type.Valid() {
		return model.Account{}, fmt.Errorf("unknown account type %q", acct.Type)
	}
	if acct.Code <= 0 {
		return model.Account{}, fmt.Errorf("account code must be positive, got %d", acct.Code)
	}
	if acct.ID == "" {
		acct.ID = id.New(id.PrefixAccount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[acct.ID]; ok {
		return model.Account{}, fmt.Errorf("account %s already exists", acct.ID)
	}
	for _, a := range s.accounts {
		if a.Code == acct.Code {
			return model.Account{}, fmt.Errorf("code %d used by %s: %w", acct.Code, a.Name, ErrDuplicateCode)
		}
	}

	s.byID[acct.ID] = acct
	s.accounts = append(s.accounts, acct)
	sortByCode(s.accounts)
	return acct, nil
}

// Delete removes a non-system account.
func (s *Service) Delete(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[accountID]
	if !ok {
		return fmt.Errorf("%s: %w", accountID, ErrNotFound)
	}
	if a.IsSystem {
		return fmt.Errorf("%s (%s): %w", a.Name, a.ID, ErrSystemAccount)
	}

	delete(s.byID, accountID)
	s.accounts = slices.DeleteFunc(s.accounts, func(x model.Account) bool { return x.ID == accountID })
	return nil
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
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

func sortByCode(accts []model.Account) {
	slices.SortStableFunc(accts, func(a, b model.Account) int { return cmp.Compare(a.Code, b.Code) })
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
