package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/model"
)

// mockAccounts implements AccountChecker for testing.
type mockAccounts struct {
	ids map[string]bool
}

func (m *mockAccounts) Exists(id string) bool {
	return m.ids[id]
}

func newMockAccounts(ids ...string) *mockAccounts {
	m := &mockAccounts{ids: make(map[string]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(lines ...model.JournalLine) model.JournalEntry {
	return model.JournalEntry{Date: date(2025, 1, 15), Description: "test", Lines: lines}
}

func dr(acct, amount string) model.JournalLine {
	return model.JournalLine{AccountID: acct, Debit: dec(amount)}
}

func cr(acct, amount string) model.JournalLine {
	return model.JournalLine{AccountID: acct, Credit: dec(amount)}
}

var defaultAccounts = newMockAccounts("bank", "accounts_receivable", "sales_revenue", "tax_payable", "rent_expense")

func TestValidate_Balanced(t *testing.T) {
	err := ValidateEntry(entry(dr("rent_expense", "100.00"), cr("bank", "100.00")), defaultAccounts)
	assert.NoError(t, err)
}

func TestValidate_WithinTolerance(t *testing.T) {
	err := ValidateEntry(entry(dr("accounts_receivable", "100.05"), cr("sales_revenue", "100.00")), defaultAccounts)
	assert.NoError(t, err, "0.05 difference is absorbed")
}

func TestValidate_Unbalanced(t *testing.T) {
	err := ValidateEntry(entry(dr("rent_expense", "100.00"), cr("bank", "99.00")), defaultAccounts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbalanced)

	var ue *UnbalancedError
	require.True(t, errors.As(err, &ue))
	assert.True(t, ue.Debit.Equal(dec("100")))
	assert.True(t, ue.Credit.Equal(dec("99")))
	assert.Contains(t, err.Error(), "100.00")
	assert.Contains(t, err.Error(), "99.00")
}

func TestValidate_JustOverTolerance(t *testing.T) {
	err := ValidateEntry(entry(dr("accounts_receivable", "100.06"), cr("sales_revenue", "100.00")), defaultAccounts)
	assert.ErrorIs(t, err, ErrUnbalanced)
}

func TestValidate_MultiLine(t *testing.T) {
	err := ValidateEntry(entry(
		dr("accounts_receivable", "1230"),
		cr("sales_revenue", "1000"),
		cr("tax_payable", "230"),
	), defaultAccounts)
	assert.NoError(t, err)
}

func TestValidate_Structural(t *testing.T) {
	tests := []struct {
		name  string
		entry model.JournalEntry
		want  string
	}{
		{"single line", entry(dr("bank", "1")), "at least 2 lines"},
		{"unknown account", entry(dr("nope", "5"), cr("bank", "5")), `unknown account "nope"`},
		{"negative", entry(dr("bank", "-5"), cr("sales_revenue", "-5")), "must not be negative"},
		{"empty line", entry(dr("bank", "5"), cr("sales_revenue", "5"), model.JournalLine{AccountID: "bank"}), "neither debit nor credit"},
		{"no date", model.JournalEntry{Lines: []model.JournalLine{dr("bank", "1"), cr("sales_revenue", "1")}}, "date is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry, defaultAccounts)
			require.Error(t, err)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Contains(t, err.Error(), tt.want)
			assert.NotErrorIs(t, err, ErrUnbalanced)
		})
	}
}

func TestValidate_BothSidesOnOneLineAllowed(t *testing.T) {
	err := ValidateEntry(entry(
		model.JournalLine{AccountID: "bank", Debit: dec("10"), Credit: dec("4")},
		cr("sales_revenue", "6"),
	), defaultAccounts)
	assert.NoError(t, err)
}
