// Package expenses records direct spending. Every recorded expense is
// published as ExpenseAdded and posted by the ledger's rules.
package expenses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/books/internal/events"
	"github.com/cleared-dev/books/internal/expenses/bankcsv"
	"github.com/cleared-dev/books/internal/id"
	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/period"
	"github.com/cleared-dev/books/internal/store"
)

// ErrInvalidAmount is returned for non-positive expense amounts.
var ErrInvalidAmount = errors.New("amount must be positive")

// StatusRecorded is the status of every stored expense.
const StatusRecorded = "recorded"

// Publisher is the event bus as seen by a producer.
type Publisher interface {
	Publish(ctx context.Context, evt events.Event) error
}

// Service records expenses.
type Service struct {
	expenses store.Collection[model.Expense]
	bus      Publisher
	logger   *logrus.Logger
}

// New creates an expenses Service.
func New(expenses store.Collection[model.Expense], bus Publisher, logger *logrus.Logger) *Service {
	return &Service{expenses: expenses, bus: bus, logger: logger}
}

// Input describes one expense.
type Input struct {
	Category      string
	Amount        decimal.Decimal
	Description   string
	PaymentMethod string
	Date          time.Time
	Reference     string
}

// Record stores an expense and publishes ExpenseAdded.
func (s *Service) Record(ctx context.Context, lock period.Lock, in Input) (model.Expense, error) {
	if err := lock.AssertUnlocked(in.Date); err != nil {
		return model.Expense{}, err
	}
	if !in.Amount.IsPositive() {
		return model.Expense{}, fmt.Errorf("expense amount %s: %w", in.Amount, ErrInvalidAmount)
	}
	if strings.TrimSpace(in.Category) == "" {
		in.Category = bankcsv.DefaultCategory
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = "bank"
	}

	exp := model.Expense{
		ID:            id.New(id.PrefixExpense),
		Category:      in.Category,
		Amount:        in.Amount.Round(2),
		Description:   in.Description,
		PaymentMethod: in.PaymentMethod,
		Date:          in.Date,
		Status:        StatusRecorded,
		Reference:     in.Reference,
	}
	if err := s.expenses.Add(ctx, exp); err != nil {
		return model.Expense{}, fmt.Errorf("saving expense: %w", err)
	}

	if err := s.bus.Publish(ctx, events.ExpenseAdded{Meta: events.Meta{Lock: lock}, Expense: exp}); err != nil {
		return exp, fmt.Errorf("posting expense %s: %w", exp.ID, err)
	}
	return exp, nil
}

// List returns every expense.
func (s *Service) List(ctx context.Context) ([]model.Expense, error) {
	return s.expenses.GetAll(ctx)
}

// ImportResult summarizes one bank statement import.
type ImportResult struct {
	Recorded  []model.Expense
	Duplicate int // rows already imported
	Credits   int // money-in rows, not expenses
	Locked    int // rows dated inside the locked period
}

// Import records an expense for every debit row of a bank statement. Rows
// seen in an earlier import are skipped, as are rows in a locked period.
func (s *Service) Import(ctx context.Context, lock period.Lock, parser bankcsv.Parser, r io.Reader, rules bankcsv.Rules) (ImportResult, error) {
	var res ImportResult

	txns, err := parser.Parse(r)
	if err != nil {
		return res, fmt.Errorf("parsing %s statement: %w", parser.Format(), err)
	}

	existing, err := s.expenses.GetAll(ctx)
	if err != nil {
		return res, fmt.Errorf("reading expenses: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		if e.Reference != "" {
			seen[e.Reference] = true
		}
	}

	for _, txn := range txns {
		if !txn.Amount.IsNegative() {
			res.Credits++
			continue
		}
		if seen[txn.Reference] {
			res.Duplicate++
			continue
		}

		exp, err := s.Record(ctx, lock, Input{
			Category:      rules.Categorize(txn.Description),
			Amount:        txn.Amount.Neg(),
			Description:   txn.Description,
			PaymentMethod: "bank",
			Date:          txn.Date,
			Reference:     txn.Reference,
		})
		switch {
		case errors.Is(err, period.ErrPeriodLocked):
			logging.LogError(s.logger, "expenses", "Import", txn.Reference, txn.Date.Format("2006-01-02"), err)
			res.Locked++
			continue
		case err != nil && exp.ID == "":
			return res, err
		case err != nil:
			// Stored but not posted; strict bus only.
			logging.LogError(s.logger, "expenses", "Import", exp.ID, txn.Reference, err)
		}
		seen[txn.Reference] = true
		res.Recorded = append(res.Recorded, exp)
	}
	return res, nil
}
