package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/model"
)

// TrialBalanceRow is one account's net position, shown on its natural side.
type TrialBalanceRow struct {
	AccountID string            `json:"accountId"`
	Code      int               `json:"code"`
	Name      string            `json:"name"`
	Type      model.AccountType `json:"type"`
	Debit     decimal.Decimal   `json:"debit"`
	Credit    decimal.Decimal   `json:"credit"`
}

// TrialBalance lists every account with activity in r.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	Balanced    bool              `json:"balanced"`
}

// TrialBalance sums each account's lines over r and checks that total
// debits equal total credits within the journal tolerance.
func (s *Service) TrialBalance(ctx context.Context, r journal.Range) (TrialBalance, error) {
	entries, err := s.ledger.List(ctx, r)
	if err != nil {
		return TrialBalance{}, fmt.Errorf("reading journal: %w", err)
	}

	tb := TrialBalance{Rows: []TrialBalanceRow{}, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, acct := range s.ledger.Accounts().All() {
		net, active := decimal.Zero, false
		for _, e := range entries {
			for _, l := range e.Lines {
				if l.AccountID == acct.ID {
					net = net.Add(l.Debit).Sub(l.Credit)
					active = true
				}
			}
		}
		if !active {
			continue
		}
		row := TrialBalanceRow{AccountID: acct.ID, Code: acct.Code, Name: acct.Name, Type: acct.Type, Debit: decimal.Zero, Credit: decimal.Zero}
		if net.IsNegative() {
			row.Credit = net.Neg()
		} else {
			row.Debit = net
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	tb.Balanced = tb.TotalDebit.Sub(tb.TotalCredit).Abs().LessThanOrEqual(journal.Tolerance)
	return tb, nil
}

// ControlCheck compares a control account with its sub-ledger.
type ControlCheck struct {
	AccountID  string          `json:"accountId"`
	Ledger     decimal.Decimal `json:"ledger"`
	SubLedger  decimal.Decimal `json:"subLedger"`
	Difference decimal.Decimal `json:"difference"`
	OK         bool            `json:"ok"`
}

// InvoiceLister and VendorLister expose the sub-ledgers to Reconcile.
type InvoiceLister interface {
	Outstanding(ctx context.Context) ([]model.Invoice, error)
}

type VendorLister interface {
	Vendors(ctx context.Context) ([]model.Vendor, error)
}

// Reconcile checks accounts receivable against open invoices and accounts
// payable against vendor balances.
func (s *Service) Reconcile(ctx context.Context, invoices InvoiceLister, vendors VendorLister) ([]ControlCheck, error) {
	entries, err := s.ledger.List(ctx, journal.Range{})
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	chart := s.ledger.Accounts()

	open, err := invoices.Outstanding(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading invoices: %w", err)
	}
	receivable := decimal.Zero
	for _, inv := range open {
		receivable = receivable.Add(inv.BalanceDue)
	}

	vs, err := vendors.Vendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading vendors: %w", err)
	}
	payable := decimal.Zero
	for _, v := range vs {
		payable = payable.Add(v.BalanceDue)
	}

	var checks []ControlCheck
	for _, c := range []struct {
		id  string
		sub decimal.Decimal
	}{
		{accounts.AccountsReceivable, receivable},
		{accounts.AccountsPayable, payable},
	} {
		acct, ok := chart.Get(c.id)
		if !ok {
			return nil, fmt.Errorf("%s: %w", c.id, accounts.ErrNotFound)
		}
		bal := accounts.Balance(acct, entries)
		diff := bal.Sub(c.sub)
		checks = append(checks, ControlCheck{
			AccountID:  c.id,
			Ledger:     bal,
			SubLedger:  c.sub,
			Difference: diff,
			OK:         diff.Abs().LessThanOrEqual(journal.Tolerance),
		})
	}
	return checks, nil
}
