package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/model"
)

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart("sole_trader")
	require.NotEmpty(t, chart)

	ids := make(map[string]bool)
	codes := make(map[int]bool)
	for _, acct := range chart {
		assert.False(t, ids[acct.ID], "duplicate id %s", acct.ID)
		assert.False(t, codes[acct.Code], "duplicate code %d", acct.Code)
		ids[acct.ID] = true
		codes[acct.Code] = true
		assert.NotEmpty(t, acct.Name)
		assert.True(t, acct.Type.Valid(), "account %s has bad type", acct.ID)
	}

	for _, required := range []string{Cash, Bank, AccountsReceivable, Inventory, AccountsPayable, TaxPayable,
		WalletCredits, SalesRevenue, DeliveryIncome, OtherIncome, COGS, GeneralExpense} {
		assert.True(t, ids[required], "seed chart must contain %s", required)
	}
}

func TestDefaultChart_UnknownEntityType(t *testing.T) {
	assert.Equal(t, DefaultChart("sole_trader"), DefaultChart("unknown_type"))
}

func TestAllOrderedByCode(t *testing.T) {
	svc := NewService([]model.Account{
		{ID: "b", Code: 2000, Name: "B", Type: model.AccountTypeLiability},
		{ID: "a", Code: 1000, Name: "A", Type: model.AccountTypeAsset},
		{ID: "c", Code: 1500, Name: "C", Type: model.AccountTypeAsset},
	})
	all := svc.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int{1000, 1500, 2000}, []int{all[0].Code, all[1].Code, all[2].Code})
}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultChart("sole_trader"))

	acct, ok := svc.Get(Bank)
	assert.True(t, ok)
	assert.Equal(t, "Bank", acct.Name)

	_, ok = svc.Get("nope")
	assert.False(t, ok)
	assert.True(t, svc.Exists(COGS))

	byCode, ok := svc.ByCode(2100)
	require.True(t, ok)
	assert.Equal(t, TaxPayable, byCode.ID)
}

func TestByType(t *testing.T) {
	svc := NewService(DefaultChart("sole_trader"))

	for _, a := range svc.ByType(model.AccountTypeIncome) {
		assert.Equal(t, model.AccountTypeIncome, a.Type)
	}
	assert.Len(t, svc.ByType(model.AccountTypeIncome), 3)
}

func TestMatchExpense(t *testing.T) {
	svc := NewService(DefaultChart("sole_trader"))

	tests := []struct {
		category string
		want     string
		ok       bool
	}{
		{"Rent", "rent_expense", true},
		{"rent expense", "rent_expense", true},
		{"  Office   Supplies ", "office_supplies_expense", true},
		{"Cost of Goods Sold", COGS, true},
		{"Sales Revenue", "", false}, // income account, not an expense
		{"Yacht", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := svc.MatchExpense(tt.category)
		assert.Equal(t, tt.ok, ok, "category %q", tt.category)
		if tt.ok {
			assert.Equal(t, tt.want, got.ID, "category %q", tt.category)
		}
	}
}

func TestAdd(t *testing.T) {
	svc := NewService(DefaultChart("sole_trader"))

	acct, err := svc.Add(model.Account{Code: 6700, Name: "Travel Expense", Type: model.AccountTypeExpense})
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ID)
	assert.True(t, svc.Exists(acct.ID))

	got, ok := svc.MatchExpense("Travel")
	require.True(t, ok)
	assert.Equal(t, acct.ID, got.ID)

	_, err = svc.Add(model.Account{Code: 6700, Name: "Other", Type: model.AccountTypeExpense})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	_, err = svc.Add(model.Account{Code: 6800, Name: "Bad", Type: "revenue"})
	assert.Error(t, err)

	_, err = svc.Add(model.Account{Code: 0, Name: "Zero", Type: model.AccountTypeAsset})
	assert.Error(t, err)

	_, err = svc.Add(model.Account{ID: Bank, Code: 1999, Name: "Bank 2", Type: model.AccountTypeAsset})
	assert.Error(t, err, "duplicate id")
}

func TestDelete(t *testing.T) {
	svc := NewService(DefaultChart("sole_trader"))

	err := svc.Delete(AccountsReceivable)
	assert.ErrorIs(t, err, ErrSystemAccount)
	assert.True(t, svc.Exists(AccountsReceivable))

	require.NoError(t, svc.Delete("marketing_expense"))
	assert.False(t, svc.Exists("marketing_expense"))

	assert.ErrorIs(t, svc.Delete("marketing_expense"), ErrNotFound)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	svc := NewService(DefaultChart("sole_trader"))

	dir := t.TempDir()
	require.NoError(t, svc.Save(dir))

	_, err := os.Stat(filepath.Join(dir, "accounts", "chart-of-accounts.csv"))
	require.NoError(t, err)

	svc2, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, svc.All(), svc2.All())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
