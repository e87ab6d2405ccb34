package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/model"
)

func TestPublishRunsAllHandlersInOrder(t *testing.T) {
	bus := NewBus(logging.Discard())
	var calls []string
	bus.Subscribe(NameExpenseAdded, "first", func(context.Context, Event) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe(NameExpenseAdded, "second", func(_ context.Context, evt Event) error {
		calls = append(calls, "second:"+evt.(ExpenseAdded).Expense.ID)
		return nil
	})
	bus.Subscribe(NameOrderCreated, "other", func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := bus.Publish(context.Background(), ExpenseAdded{Expense: model.Expense{ID: "exp_1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second:exp_1"}, calls)
	assert.Equal(t, []string{"first", "second"}, bus.Subscribers(NameExpenseAdded))
}

func TestPublishIsolatesFailures(t *testing.T) {
	bus := NewBus(logging.Discard())
	ran := 0
	bus.Subscribe(NameInvoicePaid, "fails", func(context.Context, Event) error {
		return errors.New("ledger down")
	})
	bus.Subscribe(NameInvoicePaid, "panics", func(context.Context, Event) error {
		panic("boom")
	})
	bus.Subscribe(NameInvoicePaid, "ok", func(context.Context, Event) error {
		ran++
		return nil
	})

	err := bus.Publish(context.Background(), InvoicePaid{})
	assert.NoError(t, err, "non-strict bus never surfaces handler errors")
	assert.Equal(t, 1, ran, "sibling handler still ran")
}

func TestPublishStrictJoinsErrors(t *testing.T) {
	sentinel := errors.New("ledger down")
	bus := NewBus(logging.Discard(), WithStrict(true))
	ran := false
	bus.Subscribe(NameBillApproved, "fails", func(context.Context, Event) error { return sentinel })
	bus.Subscribe(NameBillApproved, "panics", func(context.Context, Event) error { panic("boom") })
	bus.Subscribe(NameBillApproved, "ok", func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := bus.Publish(context.Background(), BillApproved{})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "fails:")
	assert.Contains(t, err.Error(), "panics: handler panic: boom")
	assert.True(t, ran)
}

func TestObserverSeesEveryOutcome(t *testing.T) {
	var outcomes []Outcome
	bus := NewBus(logging.Discard(), WithObserver(func(_ context.Context, _ Event, o Outcome) {
		outcomes = append(outcomes, o)
	}))
	bus.Subscribe(NameBillPaid, "a", func(context.Context, Event) error { return nil })
	bus.Subscribe(NameBillPaid, "b", func(context.Context, Event) error { return errors.New("nope") })

	require.NoError(t, bus.Publish(context.Background(), BillPaid{}))
	require.Len(t, outcomes, 2)
	assert.Equal(t, "a", outcomes[0].Handler)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, NameBillPaid, outcomes[1].Event)
	assert.EqualError(t, outcomes[1].Err, "nope")
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(logging.Discard(), WithStrict(true))
	assert.NoError(t, bus.Publish(context.Background(), VendorCredited{}))
}
