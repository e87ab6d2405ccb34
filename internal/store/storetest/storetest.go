// Package storetest holds the behavior every store.Collection must share.
package storetest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/store"
)

// Run exercises a fresh, empty collection returned by newColl.
func Run(t *testing.T, newColl func(t *testing.T) store.Collection[model.Vendor]) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		c := newColl(t)
		all, err := c.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		_, err = c.Get(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("add keeps insertion order", func(t *testing.T) {
		c := newColl(t)
		require.NoError(t, c.Add(ctx, vendor("ven_b", "Beta", "0")))
		require.NoError(t, c.Add(ctx, vendor("ven_a", "Alpha", "12.50")))

		all, err := c.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "ven_b", all[0].ID)
		assert.Equal(t, "ven_a", all[1].ID)
		assert.True(t, all[1].BalanceDue.Equal(decimal.RequireFromString("12.5")))

		err = c.Add(ctx, vendor("ven_a", "Dup", "0"))
		assert.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("update", func(t *testing.T) {
		c := newColl(t)
		err := c.Update(ctx, vendor("ven_a", "Alpha", "0"))
		assert.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, c.Add(ctx, vendor("ven_a", "Alpha", "0")))
		require.NoError(t, c.Update(ctx, vendor("ven_a", "Alpha Ltd", "99")))

		got, err := c.Get(ctx, "ven_a")
		require.NoError(t, err)
		assert.Equal(t, "Alpha Ltd", got.Name)
		assert.True(t, got.BalanceDue.Equal(decimal.NewFromInt(99)))
	})

	t.Run("upsert", func(t *testing.T) {
		c := newColl(t)
		require.NoError(t, c.Upsert(ctx, vendor("ven_a", "Alpha", "1")))
		require.NoError(t, c.Upsert(ctx, vendor("ven_a", "Alpha", "2")))

		all, err := c.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.True(t, all[0].BalanceDue.Equal(decimal.NewFromInt(2)))
	})

	t.Run("delete", func(t *testing.T) {
		c := newColl(t)
		require.NoError(t, c.Add(ctx, vendor("ven_a", "Alpha", "0")))
		require.NoError(t, c.Add(ctx, vendor("ven_b", "Beta", "0")))
		require.NoError(t, c.Delete(ctx, "ven_a"))
		assert.ErrorIs(t, c.Delete(ctx, "ven_a"), store.ErrNotFound)

		all, err := c.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "ven_b", all[0].ID)
	})
}

func vendor(id, name, balance string) model.Vendor {
	return model.Vendor{ID: id, Name: name, BalanceDue: decimal.RequireFromString(balance)}
}
