package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/period"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Test Biz", "sole_trader")
	cfg.Period.LockDate = "2025-03-31"
	cfg.Tax = TaxConfig{Registered: true, State: "KA", Rate: 18}
	cfg.Events.Strict = true

	path := filepath.Join(t.TempDir(), "books.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Business.Name, got.Business.Name)
	assert.Equal(t, cfg.Business.EntityType, got.Business.EntityType)
	assert.Equal(t, cfg.Fiscal.YearStart, got.Fiscal.YearStart)
	assert.Equal(t, "2025-03-31", got.Period.LockDate)
	assert.True(t, got.Tax.Registered)
	assert.Equal(t, "KA", got.Tax.State)
	assert.InDelta(t, 1000, got.Approval.BillThreshold, 0.001)
	assert.InDelta(t, 0.4, got.Posting.COGSRatio, 0.001)
	assert.True(t, got.Events.Strict)
	assert.Equal(t, cfg.Git.AuthorEmail, got.Git.AuthorEmail)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Company", "sole_trader")

	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "01-01", cfg.Fiscal.YearStart)
	assert.Empty(t, cfg.Period.LockDate)
	assert.InDelta(t, 1000, cfg.Approval.BillThreshold, 0.001)
	assert.InDelta(t, 0.4, cfg.Posting.COGSRatio, 0.001)
	assert.False(t, cfg.Events.Strict)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Git.AutoCommit)

	lock, err := cfg.Lock()
	require.NoError(t, err)
	assert.NoError(t, lock.AssertUnlocked(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLock(t *testing.T) {
	cfg := Default("Biz", "sole_trader")
	cfg.SetLock(period.LockedThrough(time.Date(2025, 6, 30, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-06-30", cfg.Period.LockDate)

	lock, err := cfg.Lock()
	require.NoError(t, err)
	assert.ErrorIs(t, lock.AssertUnlocked(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)), period.ErrPeriodLocked)
	assert.NoError(t, lock.AssertUnlocked(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))

	cfg.SetLock(period.Lock{})
	assert.Empty(t, cfg.Period.LockDate)
}

func TestLoadBadLockDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	require.NoError(t, os.WriteFile(path, []byte("period:\n  lock_date: yesterday\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock_date")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test Biz", "sole_trader")
	path := filepath.Join(t.TempDir(), "books.yaml")
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "bill_threshold: 1000")
	assert.Contains(t, contents, "year_start: 01-01")
	assert.Contains(t, contents, "auto_commit: true")
}
