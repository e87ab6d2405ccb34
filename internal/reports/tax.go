package reports

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/journal"
)

// TaxSettings is the registration part of the books configuration.
type TaxSettings struct {
	Registered bool
	State      string
	Rate       float64
}

// TaxMonth is one month of tax movements.
type TaxMonth struct {
	Month     string          `json:"month"` // "2025-01"
	Collected decimal.Decimal `json:"collected"`
	Remitted  decimal.Decimal `json:"remitted"`
}

// TaxReport summarizes the tax payable account.
type TaxReport struct {
	Registered   bool            `json:"isRegistered"`
	State        string          `json:"state"`
	Rate         float64         `json:"rate"`
	Collected    decimal.Decimal `json:"collected"`
	Remitted     decimal.Decimal `json:"remitted"`
	NetLiability decimal.Decimal `json:"netLiability"`
	Monthly      []TaxMonth      `json:"monthly"`
}

// TaxReport reports tax collected (credits to tax payable) and remitted
// (debits) over r, month by month.
func (s *Service) TaxReport(ctx context.Context, r journal.Range, settings TaxSettings) (TaxReport, error) {
	entries, err := s.ledger.List(ctx, r)
	if err != nil {
		return TaxReport{}, fmt.Errorf("reading journal: %w", err)
	}

	rep := TaxReport{
		Registered: settings.Registered,
		State:      settings.State,
		Rate:       settings.Rate,
		Collected:  decimal.Zero,
		Remitted:   decimal.Zero,
		Monthly:    []TaxMonth{},
	}
	idx := map[string]int{}
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.AccountID != accounts.TaxPayable {
				continue
			}
			key := e.Date.Format("2006-01")
			i, ok := idx[key]
			if !ok {
				i = len(rep.Monthly)
				idx[key] = i
				rep.Monthly = append(rep.Monthly, TaxMonth{Month: key, Collected: decimal.Zero, Remitted: decimal.Zero})
			}
			rep.Monthly[i].Collected = rep.Monthly[i].Collected.Add(l.Credit)
			rep.Monthly[i].Remitted = rep.Monthly[i].Remitted.Add(l.Debit)
			rep.Collected = rep.Collected.Add(l.Credit)
			rep.Remitted = rep.Remitted.Add(l.Debit)
		}
	}
	slices.SortFunc(rep.Monthly, func(a, b TaxMonth) int { return strings.Compare(a.Month, b.Month) })
	rep.NetLiability = rep.Collected.Sub(rep.Remitted)
	return rep, nil
}
