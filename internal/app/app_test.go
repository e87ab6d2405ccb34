package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/expenses"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/payables"
	"github.com/cleared-dev/books/internal/period"
	"github.com/cleared-dev/books/internal/postinglog"
	"github.com/cleared-dev/books/internal/sales"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestInitLayout(t *testing.T) {
	root := t.TempDir()
	_, err := Init(context.Background(), root, InitOptions{Name: "Test Biz", EntityType: "sole_trader"}, io.Discard)
	require.NoError(t, err)

	for _, p := range []string{ConfigFile, "accounts/chart-of-accounts.csv", "records", "logs", "import/processed", "import/rules.yaml"} {
		_, err := os.Stat(filepath.Join(root, p))
		assert.NoError(t, err, p)
	}

	_, err = Init(context.Background(), root, InitOptions{Name: "Again"}, io.Discard)
	assert.ErrorContains(t, err, "already exists")
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(t.TempDir(), io.Discard)
	assert.ErrorContains(t, err, "loading config")
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	_, err := Init(ctx, root, InitOptions{Name: "Test Biz", EntityType: "sole_trader"}, io.Discard)
	require.NoError(t, err)

	a, err := Open(root, io.Discard)
	require.NoError(t, err)
	lock, err := a.Lock()
	require.NoError(t, err)

	order, err := a.Sales.PlaceOrder(ctx, lock, sales.OrderInput{
		CustomerID: "cus_1", Date: date(2025, 1, 10),
		Subtotal: dec("1000"), TaxAmount: dec("180"), ShippingCost: dec("50"), Total: dec("1230"),
	})
	require.NoError(t, err)
	_, err = a.Expenses.Record(ctx, lock, expenses.Input{Category: "Rent", Amount: dec("5000"), Date: date(2025, 1, 31)})
	require.NoError(t, err)
	v, err := a.Payables.AddVendor(ctx, model.Vendor{Name: "Acme"})
	require.NoError(t, err)
	bill, err := a.Payables.CreateBill(ctx, lock, payables.BillInput{VendorID: v.ID, Date: date(2025, 2, 1), Amount: dec("1500")})
	require.NoError(t, err)
	_, err = a.Payables.ApproveBill(ctx, lock, bill.ID)
	require.NoError(t, err)

	// Everything survives a reopen.
	b, err := Open(root, io.Discard)
	require.NoError(t, err)

	jan, err := b.Journal.List(ctx, journal.Range{From: date(2025, 1, 1), To: date(2025, 1, 31)})
	require.NoError(t, err)
	assert.Len(t, jan, 3)
	assert.Equal(t, order.ID, jan[0].ReferenceID)
	_, err = os.Stat(filepath.Join(root, "2025", "02", "journal.csv"))
	assert.NoError(t, err)

	invoices, err := b.Receivables.List(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, order.ID, invoices[0].OrderID)

	checks, err := b.Reports.Reconcile(ctx, b.Receivables, b.Payables)
	require.NoError(t, err)
	for _, c := range checks {
		assert.True(t, c.OK, c.AccountID)
	}

	entries, err := b.PostingLog.Read()
	require.NoError(t, err)
	var handlers []string
	for _, e := range entries {
		assert.Equal(t, postinglog.OutcomeOK, e.Outcome)
		handlers = append(handlers, e.Handler)
	}
	assert.Equal(t, []string{"posting.order", "receivables.invoice", "posting.expense", "posting.bill_approved"}, handlers)
}

func TestLockFromConfig(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	a, err := Init(ctx, root, InitOptions{Name: "Test Biz"}, io.Discard)
	require.NoError(t, err)

	a.Config.SetLock(period.LockedThrough(date(2025, 1, 31)))
	require.NoError(t, a.SaveConfig())

	b, err := Open(root, io.Discard)
	require.NoError(t, err)
	lock, err := b.Lock()
	require.NoError(t, err)

	_, err = b.Expenses.Record(ctx, lock, expenses.Input{Category: "Rent", Amount: dec("10"), Date: date(2025, 1, 31)})
	assert.ErrorIs(t, err, period.ErrPeriodLocked)
	entries, err := b.Journal.List(ctx, journal.Range{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveAccounts(t *testing.T) {
	root := t.TempDir()
	a, err := Init(context.Background(), root, InitOptions{Name: "Test Biz"}, io.Discard)
	require.NoError(t, err)

	_, err = a.Accounts.Add(model.Account{Code: 6700, Name: "Software Expense", Type: model.AccountTypeExpense})
	require.NoError(t, err)
	require.NoError(t, a.SaveAccounts())

	b, err := Open(root, io.Discard)
	require.NoError(t, err)
	acct, ok := b.Accounts.MatchExpense("software")
	require.True(t, ok)
	assert.Equal(t, 6700, acct.Code)
	_, ok = b.Accounts.Get(accounts.Bank)
	assert.True(t, ok)
}

func TestEnvOverridesAreNotSaved(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	_, err := Init(ctx, root, InitOptions{Name: "Test Biz"}, io.Discard)
	require.NoError(t, err)

	t.Setenv("BOOKS_EVENTS_STRICT", "true")
	a, err := Open(root, io.Discard)
	require.NoError(t, err)
	assert.True(t, a.Runtime.Events.Strict)
	assert.False(t, a.Config.Events.Strict)

	require.NoError(t, a.SaveConfig())
	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "strict: false")
}
