package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/id"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/period"
)

// ErrAccountInUse is returned when deleting an account that has journal lines.
var ErrAccountInUse = errors.New("account has journal lines")

// Range is an inclusive calendar-day range. A zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	d := day(t)
	if !r.From.IsZero() && d.Before(day(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(day(r.To)) {
		return false
	}
	return true
}

// Service is the journal store: the single source of truth for money.
type Service struct {
	mu       sync.Mutex // serializes validate-then-append
	repo     Repository
	accounts *accounts.Service
	logger   *logrus.Logger
	now      func() time.Time
}

// NewService creates a journal Service.
func NewService(repo Repository, accts *accounts.Service, logger *logrus.Logger) *Service {
	return &Service{repo: repo, accounts: accts, logger: logger, now: time.Now}
}

// Accounts returns the chart of accounts the journal validates against.
func (s *Service) Accounts() *accounts.Service { return s.accounts }

// Post validates a candidate entry and appends it. The lock is checked first,
// then the entry is validated; on any failure nothing is written.
func (s *Service) Post(ctx context.Context, lock period.Lock, candidate model.JournalEntry) (model.JournalEntry, error) {
	if err := lock.AssertUnlocked(candidate.Date); err != nil {
		return model.JournalEntry{}, err
	}
	if err := ValidateEntry(candidate, s.accounts); err != nil {
		return model.JournalEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.nextSeq(ctx, candidate.Date)
	if err != nil {
		return model.JournalEntry{}, err
	}

	entry := candidate
	entry.ID = id.FormatEntryID(candidate.Date.Year(), int(candidate.Date.Month()), seq)
	entry.Status = model.StatusPosted
	entry.TotalAmount, _ = entry.Totals()
	entry.CreatedAt = s.now().UTC().Truncate(time.Second)
	if entry.ReferenceType == "" {
		entry.ReferenceType = model.ReferenceAdjustment
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return model.JournalEntry{}, fmt.Errorf("appending entry: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"entry":     entry.ID,
		"reference": fmt.Sprintf("%s:%s", entry.ReferenceType, entry.ReferenceID),
		"amount":    entry.TotalAmount.StringFixed(2),
	}).Debug("journal entry posted")
	return entry, nil
}

// List returns entries whose date falls inside r, in posting order.
func (s *Service) List(ctx context.Context, r Range) ([]model.JournalEntry, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	if r == (Range{}) {
		return all, nil
	}
	var out []model.JournalEntry
	for _, e := range all {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListAccounts returns the chart ordered by code with balances derived from
// the full journal.
func (s *Service) ListAccounts(ctx context.Context) ([]model.AccountBalance, error) {
	entries, err := s.List(ctx, Range{})
	if err != nil {
		return nil, err
	}
	return accounts.WithBalances(s.accounts.All(), entries), nil
}

// Balance returns one account's derived balance over r.
func (s *Service) Balance(ctx context.Context, accountID string, r Range) (decimal.Decimal, error) {
	acct, ok := s.accounts.Get(accountID)
	if !ok {
		return decimal.Zero, fmt.Errorf("%s: %w", accountID, accounts.ErrNotFound)
	}
	entries, err := s.List(ctx, r)
	if err != nil {
		return decimal.Zero, err
	}
	return accounts.Balance(acct, entries), nil
}

// DeleteAccount removes an account from the chart if no entry references it.
func (s *Service) DeleteAccount(ctx context.Context, accountID string) error {
	entries, err := s.List(ctx, Range{})
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Touches(accountID) {
			return fmt.Errorf("%s used by %s: %w", accountID, e.ID, ErrAccountInUse)
		}
	}
	return s.accounts.Delete(accountID)
}

func (s *Service) nextSeq(ctx context.Context, date time.Time) (int, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading journal: %w", err)
	}

	maxSeq := 0
	for _, e := range all {
		year, month, seq, err := id.ParseEntryID(e.ID)
		if err != nil {
			continue
		}
		if year == date.Year() && month == int(date.Month()) && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
