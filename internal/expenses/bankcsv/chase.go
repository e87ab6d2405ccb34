// Package bankcsv reads bank statement exports into transactions and
// assigns each debit an expense category.
package bankcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/model"
)

// Parser converts one bank's CSV export into transactions.
type Parser interface {
	Format() string
	Parse(r io.Reader) ([]model.BankTransaction, error)
}

// Chase reads Chase checking exports:
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
type Chase struct{}

const chaseDate = "01/02/2006"

func (Chase) Format() string { return "chase" }

func (Chase) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading chase header: %w", err)
	}
	cols, err := columns(header, "Posting Date", "Description", "Amount", "Type")
	if err != nil {
		return nil, err
	}

	var txns []model.BankTransaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading chase CSV: %w", err)
		}
		if len(rec) < len(header) {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", line, len(header), len(rec))
		}

		date, err := time.Parse(chaseDate, strings.TrimSpace(rec[cols["Posting Date"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", line, rec[cols["Posting Date"]], err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[cols["Amount"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", line, rec[cols["Amount"]], err)
		}
		desc := strings.TrimSpace(rec[cols["Description"]])

		txns = append(txns, model.BankTransaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Reference:   reference("chase", date, desc, amount),
			Type:        rec[cols["Type"]],
		})
	}
	return txns, nil
}

func columns(header []string, want ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, w := range want {
		if _, ok := idx[w]; !ok {
			return nil, fmt.Errorf("missing column %q", w)
		}
	}
	return idx, nil
}

// reference builds a stable key like "chase_20250103_GITHUBPROS_4.00" used to
// skip rows that were already imported.
func reference(bank string, date time.Time, desc string, amount decimal.Decimal) string {
	slug := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(slug) > 10 {
		slug = slug[:10]
	}
	return fmt.Sprintf("%s_%s_%s_%s", bank, date.Format("20060102"), slug, amount.Abs().StringFixed(2))
}

// Lookup returns the parser registered for format, case-insensitively.
func Lookup(format string) (Parser, error) {
	switch strings.ToLower(format) {
	case "chase", "":
		return Chase{}, nil
	default:
		return nil, fmt.Errorf("unknown bank format %q", format)
	}
}
