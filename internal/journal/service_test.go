package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/period"
)

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	return NewService(repo, accounts.NewService(accounts.DefaultChart("sole_trader")), logging.Discard())
}

func rentEntry(day int, amount string) model.JournalEntry {
	return model.JournalEntry{
		Date:          date(2025, 1, day),
		Description:   "Rent",
		ReferenceID:   "exp_1",
		ReferenceType: model.ReferencePayment,
		Lines:         []model.JournalLine{dr("rent_expense", amount), cr(accounts.Bank, amount)},
	}
}

func TestPost_AssignsIDAndStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMemoryRepository())

	e, err := svc.Post(ctx, period.Lock{}, rentEntry(15, "5000"))
	require.NoError(t, err)
	assert.Equal(t, "JE-2025-01-001", e.ID)
	assert.Equal(t, model.StatusPosted, e.Status)
	assert.True(t, e.TotalAmount.Equal(dec("5000")))
	assert.False(t, e.CreatedAt.IsZero())

	e2, err := svc.Post(ctx, period.Lock{}, rentEntry(20, "10"))
	require.NoError(t, err)
	assert.Equal(t, "JE-2025-01-002", e2.ID)

	feb := rentEntry(1, "10")
	feb.Date = date(2025, 2, 1)
	e3, err := svc.Post(ctx, period.Lock{}, feb)
	require.NoError(t, err)
	assert.Equal(t, "JE-2025-02-001", e3.ID, "sequence restarts each month")
}

func TestPost_DefaultsReferenceType(t *testing.T) {
	svc := newTestService(t, NewMemoryRepository())
	candidate := rentEntry(15, "1")
	candidate.ReferenceType = ""

	e, err := svc.Post(context.Background(), period.Lock{}, candidate)
	require.NoError(t, err)
	assert.Equal(t, model.ReferenceAdjustment, e.ReferenceType)
}

func TestPost_UnbalancedWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMemoryRepository())

	bad := rentEntry(15, "100")
	bad.Lines[1].Credit = dec("90")
	_, err := svc.Post(ctx, period.Lock{}, bad)
	require.ErrorIs(t, err, ErrUnbalanced)

	entries, err := svc.List(ctx, Range{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPost_PeriodLocked(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMemoryRepository())
	lock := period.LockedThrough(date(2025, 1, 31))

	_, err := svc.Post(ctx, lock, rentEntry(15, "100"))
	require.ErrorIs(t, err, period.ErrPeriodLocked)

	// The lock is checked before validation, so even a broken entry reports the lock.
	bad := rentEntry(31, "100")
	bad.Lines = bad.Lines[:1]
	_, err = svc.Post(ctx, lock, bad)
	require.ErrorIs(t, err, period.ErrPeriodLocked)

	entries, err := svc.List(ctx, Range{})
	require.NoError(t, err)
	assert.Empty(t, entries, "locked posting must leave the journal unchanged")

	feb := rentEntry(1, "100")
	feb.Date = date(2025, 2, 1)
	_, err = svc.Post(ctx, lock, feb)
	assert.NoError(t, err)
}

func TestList_Range(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMemoryRepository())
	for _, d := range []int{5, 15, 25} {
		_, err := svc.Post(ctx, period.Lock{}, rentEntry(d, "1"))
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, Range{From: date(2025, 1, 10), To: date(2025, 1, 25)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 15, got[0].Date.Day())
	assert.Equal(t, 25, got[1].Date.Day())

	got, err = svc.List(ctx, Range{To: date(2025, 1, 5)})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListAccountsAndBalance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMemoryRepository())
	_, err := svc.Post(ctx, period.Lock{}, rentEntry(15, "5000"))
	require.NoError(t, err)

	rows, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1].Code, rows[i].Code, "ordered by code")
	}

	bal, err := svc.Balance(ctx, accounts.Bank, Range{})
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("-5000")), "bank credited: %s", bal)

	bal, err = svc.Balance(ctx, "rent_expense", Range{})
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("5000")))

	_, err = svc.Balance(ctx, "missing", Range{})
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewMemoryRepository())
	_, err := svc.Post(ctx, period.Lock{}, rentEntry(15, "5000"))
	require.NoError(t, err)

	err = svc.DeleteAccount(ctx, "rent_expense")
	assert.ErrorIs(t, err, ErrAccountInUse)
	assert.True(t, svc.Accounts().Exists("rent_expense"))

	require.NoError(t, svc.DeleteAccount(ctx, "marketing_expense"))
	assert.False(t, svc.Accounts().Exists("marketing_expense"))
}

func TestCSVRepository(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := newTestService(t, NewCSVRepository(dir))

	_, err := svc.Post(ctx, period.Lock{}, rentEntry(15, "10.00"))
	require.NoError(t, err)
	_, err = svc.Post(ctx, period.Lock{}, rentEntry(20, "20.00"))
	require.NoError(t, err)
	dec1 := rentEntry(1, "5")
	dec1.Date = date(2024, 12, 1)
	_, err = svc.Post(ctx, period.Lock{}, dec1)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "2025", "01", "journal.csv"))
	require.NoError(t, err)

	// A fresh repository over the same directory sees everything, oldest month first.
	reopened := newTestService(t, NewCSVRepository(dir))
	all, err := reopened.List(ctx, Range{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "JE-2024-12-001", all[0].ID)
	assert.Equal(t, "JE-2025-01-001", all[1].ID)
	assert.Equal(t, "JE-2025-01-002", all[2].ID)

	january, err := reopened.List(ctx, Range{From: date(2025, 1, 1), To: date(2025, 1, 31)})
	require.NoError(t, err)
	assert.Len(t, january, 2)

	june, err := reopened.List(ctx, Range{From: date(2025, 6, 1), To: date(2025, 6, 30)})
	require.NoError(t, err)
	assert.Empty(t, june)
}

func TestMemoryRepositoryIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	e := rentEntry(1, "1")
	require.NoError(t, repo.Append(ctx, e))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	all[0].Lines[0].AccountID = "tampered"

	again, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rent_expense", again[0].Lines[0].AccountID, "stored entries are immutable")
}
