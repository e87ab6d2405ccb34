// Package reports derives financial statements from the journal. Nothing
// here is stored: every report re-reads the entries it needs.
package reports

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Ledger is the read side of the journal store.
type Ledger interface {
	List(ctx context.Context, r journal.Range) ([]model.JournalEntry, error)
	Accounts() *accounts.Service
}

// OrderLister and ExpenseLister feed the bootstrap fallback of ProfitLoss.
type OrderLister interface {
	List(ctx context.Context) ([]model.Order, error)
}

type ExpenseLister interface {
	List(ctx context.Context) ([]model.Expense, error)
}

// Service builds reports.
type Service struct {
	ledger    Ledger
	orders    OrderLister
	expenses  ExpenseLister
	cogsRatio decimal.Decimal
}

// New creates a report Service. orders and expenses may be nil, which
// disables the fallback.
func New(ledger Ledger, orders OrderLister, expenses ExpenseLister, cogsRatio decimal.Decimal) *Service {
	return &Service{ledger: ledger, orders: orders, expenses: expenses, cogsRatio: cogsRatio}
}

// Line is one account (or category) in a statement section.
type Line struct {
	AccountID string          `json:"accountId,omitempty"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// Section is a total with its breakdown.
type Section struct {
	Total     decimal.Decimal `json:"total"`
	Breakdown []Line          `json:"breakdown"`
}

func (s *Section) add(l Line) {
	s.Total = s.Total.Add(l.Amount)
	s.Breakdown = append(s.Breakdown, l)
}

// ProfitLoss is the income statement for a date range.
type ProfitLoss struct {
	Range           journal.Range   `json:"-"`
	Revenue         Section         `json:"revenue"`
	COGS            decimal.Decimal `json:"cogs"`
	GrossProfit     decimal.Decimal `json:"grossProfit"`
	Expenses        Section         `json:"expenses"`
	NetProfit       decimal.Decimal `json:"netProfit"`
	NetProfitMargin decimal.Decimal `json:"netProfitMargin"`
	// Estimated is set when the statement was derived from raw orders and
	// expenses because the journal had no entries yet.
	Estimated bool `json:"estimated"`
}

// ProfitLoss computes the income statement over r from account balances.
func (s *Service) ProfitLoss(ctx context.Context, r journal.Range) (ProfitLoss, error) {
	entries, err := s.ledger.List(ctx, r)
	if err != nil {
		return ProfitLoss{}, fmt.Errorf("reading journal: %w", err)
	}
	if len(entries) == 0 && s.orders != nil && s.expenses != nil {
		all, err := s.ledger.List(ctx, journal.Range{})
		if err != nil {
			return ProfitLoss{}, fmt.Errorf("reading journal: %w", err)
		}
		if len(all) == 0 {
			return s.estimate(ctx, r)
		}
	}

	pl := ProfitLoss{Range: r, Revenue: newSection(), Expenses: newSection(), COGS: decimal.Zero}
	for _, acct := range s.ledger.Accounts().All() {
		bal := accounts.Balance(acct, entries)
		switch {
		case acct.Type == model.AccountTypeIncome:
			if !bal.IsZero() {
				pl.Revenue.add(Line{AccountID: acct.ID, Name: acct.Name, Amount: bal})
			}
		case acct.ID == accounts.COGS:
			pl.COGS = bal
		case acct.Type == model.AccountTypeExpense:
			if !bal.IsZero() {
				pl.Expenses.add(Line{AccountID: acct.ID, Name: acct.Name, Amount: bal})
			}
		}
	}
	pl.finish()
	return pl, nil
}

// estimate derives a statement from orders and expenses using the same cost
// of goods rule the posting engine applies.
func (s *Service) estimate(ctx context.Context, r journal.Range) (ProfitLoss, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return ProfitLoss{}, fmt.Errorf("reading orders: %w", err)
	}
	spend, err := s.expenses.List(ctx)
	if err != nil {
		return ProfitLoss{}, fmt.Errorf("reading expenses: %w", err)
	}

	pl := ProfitLoss{Range: r, Revenue: newSection(), Expenses: newSection(), COGS: decimal.Zero, Estimated: true}
	sales, delivery := decimal.Zero, decimal.Zero
	for _, o := range orders {
		if !r.Contains(o.Date) {
			continue
		}
		sales = sales.Add(o.Subtotal)
		delivery = delivery.Add(o.ShippingCost)
		cost, ok := o.ItemCost()
		if !ok {
			cost = o.Subtotal.Mul(s.cogsRatio)
		}
		pl.COGS = pl.COGS.Add(cost.Round(2))
	}
	if !sales.IsZero() {
		pl.Revenue.add(Line{AccountID: accounts.SalesRevenue, Name: "Sales Revenue", Amount: sales})
	}
	if !delivery.IsZero() {
		pl.Revenue.add(Line{AccountID: accounts.DeliveryIncome, Name: "Delivery Fee Income", Amount: delivery})
	}

	byCategory := map[string]decimal.Decimal{}
	for _, x := range spend {
		if r.Contains(x.Date) {
			byCategory[x.Category] = byCategory[x.Category].Add(x.Amount)
		}
	}
	for _, c := range slices.Sorted(maps.Keys(byCategory)) {
		pl.Expenses.add(Line{Name: c, Amount: byCategory[c]})
	}

	pl.finish()
	return pl, nil
}

func (pl *ProfitLoss) finish() {
	pl.GrossProfit = pl.Revenue.Total.Sub(pl.COGS)
	pl.NetProfit = pl.GrossProfit.Sub(pl.Expenses.Total)
	pl.NetProfitMargin = decimal.Zero
	if !pl.Revenue.Total.IsZero() {
		pl.NetProfitMargin = pl.NetProfit.Div(pl.Revenue.Total).Mul(hundred).Round(2)
	}
}

func newSection() Section {
	return Section{Total: decimal.Zero, Breakdown: []Line{}}
}
