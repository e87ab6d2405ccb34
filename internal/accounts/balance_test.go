package accounts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleEntries() []model.JournalEntry {
	return []model.JournalEntry{
		{ID: "JE-2025-01-001", Lines: []model.JournalLine{
			{AccountID: AccountsReceivable, Debit: dec("1230")},
			{AccountID: SalesRevenue, Credit: dec("1000")},
			{AccountID: TaxPayable, Credit: dec("180")},
			{AccountID: DeliveryIncome, Credit: dec("50")},
		}},
		{ID: "JE-2025-01-002", Lines: []model.JournalLine{
			{AccountID: Bank, Debit: dec("1000")},
			{AccountID: AccountsReceivable, Credit: dec("1000")},
		}},
		{ID: "JE-2025-01-003", Lines: []model.JournalLine{
			{AccountID: "rent_expense", Debit: dec("500")},
			{AccountID: Bank, Credit: dec("500")},
		}},
	}
}

func TestBalanceSignConvention(t *testing.T) {
	svc := NewService(DefaultChart("sole_trader"))
	entries := sampleEntries()

	tests := []struct {
		id   string
		want string
	}{
		{AccountsReceivable, "230"}, // asset: debit - credit
		{Bank, "500"},
		{SalesRevenue, "1000"}, // income: credit - debit
		{TaxPayable, "180"},    // liability: credit - debit
		{"rent_expense", "500"},
		{COGS, "0"},
	}
	for _, tt := range tests {
		acct, ok := svc.Get(tt.id)
		require.True(t, ok)
		got := Balance(acct, entries)
		assert.True(t, got.Equal(dec(tt.want)), "%s: got %s want %s", tt.id, got, tt.want)
	}
}

func TestBalanceDeterministic(t *testing.T) {
	svc := NewService(DefaultChart("sole_trader"))
	entries := sampleEntries()
	acct, _ := svc.Get(AccountsReceivable)

	first := Balance(acct, entries)
	second := Balance(acct, entries)
	assert.True(t, first.Equal(second))
}

func TestWithBalances(t *testing.T) {
	svc := NewService(DefaultChart("sole_trader"))
	entries := sampleEntries()

	rows := WithBalances(svc.All(), entries)
	require.Len(t, rows, len(svc.All()))

	for i, row := range rows {
		assert.Equal(t, svc.All()[i].ID, row.ID, "order preserved")
		assert.True(t, row.Balance.Equal(Balance(row.Account, entries)), "%s agrees with Balance", row.ID)
	}
}
