package postinglog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/events"
	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/model"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func TestAppendAndRead(t *testing.T) {
	l := New(t.TempDir(), logging.Discard())
	first := Entry{Timestamp: testTime, Event: "ExpenseAdded", Handler: "posting.expense", Reference: "exp_1", Outcome: OutcomeOK, DurationMs: 3}
	second := Entry{Timestamp: testTime, Event: "BillPaid", Handler: "posting.bill_paid", Reference: "pay_1", Outcome: OutcomeFailed, Error: "period locked, through 2025-01-31"}

	require.NoError(t, l.Append(first))
	require.NoError(t, l.Append(second))

	got, err := l.Read()
	require.NoError(t, err)
	assert.Equal(t, []Entry{first, second}, got)

	failed, err := l.Failures()
	require.NoError(t, err)
	assert.Equal(t, []Entry{second}, failed)
}

func TestReadMissing(t *testing.T) {
	got, err := New(t.TempDir(), logging.Discard()).Read()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadCorrupt(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "logs"), 0o755))
	data := "timestamp,event,handler,reference,outcome,error,duration_ms\nyesterday,E,h,r,ok,,1\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, Path), []byte(data), 0o644))

	_, err := New(root, logging.Discard()).Read()
	assert.ErrorContains(t, err, "parsing timestamp")
}

func TestObserverRecordsBusOutcomes(t *testing.T) {
	l := New(t.TempDir(), logging.Discard())
	l.now = func() time.Time { return testTime }

	bus := events.NewBus(logging.Discard(), events.WithObserver(l.Observer()))
	bus.Subscribe(events.NameExpenseAdded, "posting.expense", func(context.Context, events.Event) error { return nil })
	bus.Subscribe(events.NameExpenseAdded, "audit", func(context.Context, events.Event) error { return errors.New("disk full") })

	require.NoError(t, bus.Publish(context.Background(), events.ExpenseAdded{Expense: model.Expense{ID: "exp_9"}}))

	got, err := l.Read()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "posting.expense", got[0].Handler)
	assert.Equal(t, OutcomeOK, got[0].Outcome)
	assert.Equal(t, "exp_9", got[0].Reference)
	assert.Equal(t, testTime, got[0].Timestamp)
	assert.Equal(t, OutcomeFailed, got[1].Outcome)
	assert.Equal(t, "disk full", got[1].Error)
}

func TestReference(t *testing.T) {
	assert.Equal(t, "ord_1", Reference(events.OrderCreated{Order: model.Order{ID: "ord_1"}}))
	assert.Equal(t, "pay_2", Reference(events.InvoicePaid{Payment: model.Payment{ID: "pay_2"}}))
	assert.Equal(t, "cred_1", Reference(events.VendorCredited{CreditID: "cred_1"}))
}
