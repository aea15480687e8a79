// Package storetest holds the behaviour every store.Store backend must
// share. Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Factory returns a fresh, empty store for one sub-test.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("append assigns sequential ids", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id1, err := s.AppendTransaction(ctx, expense("Coffee", "Food & Dining", "-4.50", core.NewDate(2025, 5, 1)))
		require.NoError(t, err)
		id2, err := s.AppendTransaction(ctx, expense("Bus", "Transportation", "-2.75", core.NewDate(2025, 5, 1)))
		require.NoError(t, err)

		assert.Equal(t, int64(1), id1)
		assert.Equal(t, int64(2), id2)
	})

	t.Run("round trips every field", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		in := expense("Coffee", "Food & Dining", "-4.50", core.NewDate(2025, 5, 1))
		in.PaymentMode = core.PaymentCard
		id, err := s.AppendTransaction(ctx, in)
		require.NoError(t, err)

		got, err := s.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "Coffee", got.Title)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("-4.50")), got.Amount.String())
		assert.Equal(t, "May 1, 2025", got.DateLabel())
		assert.Equal(t, "Food & Dining", got.Category)
		assert.Equal(t, core.PaymentCard, got.PaymentMode)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("get unknown id is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetTransaction(context.Background(), 42)
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
	})

	t.Run("rejects invalid transactions without storing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.AppendTransaction(ctx, core.Transaction{Title: "", Category: "x", PaymentMode: core.PaymentCash, Date: core.NewDate(2025, 1, 1)})
		require.Error(t, err)

		txs, err := s.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("list orders newest date first", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, in := range []core.Transaction{
			expense("a", "x", "-1", core.NewDate(2025, 1, 10)),
			expense("b", "x", "-1", core.NewDate(2025, 3, 1)),
			expense("c", "x", "-1", core.NewDate(2025, 1, 10)),
		} {
			_, err := s.AppendTransaction(ctx, in)
			require.NoError(t, err)
		}

		txs, err := s.ListTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, []string{"b", "c", "a"}, []string{txs[0].Title, txs[1].Title, txs[2].Title})
	})

	t.Run("equality filtered scans", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		card := expense("Dinner", "Food & Dining", "-30", core.NewDate(2025, 2, 1))
		card.PaymentMode = core.PaymentCard
		for _, in := range []core.Transaction{
			expense("Coffee", "Food & Dining", "-4.50", core.NewDate(2025, 2, 1)),
			card,
			expense("Bus", "Transportation", "-2", core.NewDate(2025, 2, 1)),
		} {
			_, err := s.AppendTransaction(ctx, in)
			require.NoError(t, err)
		}

		food, err := s.TransactionsByCategory(ctx, "Food & Dining")
		require.NoError(t, err)
		assert.Len(t, food, 2)

		none, err := s.TransactionsByCategory(ctx, "food & dining")
		require.NoError(t, err)
		assert.Empty(t, none)

		cards, err := s.TransactionsByPaymentMode(ctx, core.PaymentCard)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "Dinner", cards[0].Title)
	})

	t.Run("budgets keep insertion order", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		ids, err := s.AppendBudgets(ctx, core.DefaultBudgets())
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids)

		count, err := s.CountBudgets(ctx)
		require.NoError(t, err)
		assert.Equal(t, 6, count)

		budgets, err := s.ListBudgets(ctx)
		require.NoError(t, err)
		require.Len(t, budgets, 6)
		for i, want := range core.DefaultBudgets() {
			assert.Equal(t, want.Category, budgets[i].Category)
			assert.True(t, want.Limit.Equal(budgets[i].Limit))
			assert.Equal(t, want.Color, budgets[i].Color)
			assert.Equal(t, want.IconName, budgets[i].IconName)
		}

		housing, err := s.BudgetsByCategory(ctx, "Housing")
		require.NoError(t, err)
		require.Len(t, housing, 1)
		assert.Equal(t, int64(5), housing[0].ID)
	})

	t.Run("bulk budget append is all or nothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		bad := core.DefaultBudgets()
		bad[3].Limit = decimal.Zero
		_, err := s.AppendBudgets(ctx, bad)
		require.Error(t, err)

		count, err := s.CountBudgets(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("preferences", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, ok, err := s.GetPreference(ctx, "theme")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.SetPreference(ctx, "theme", "dark"))
		require.NoError(t, s.SetPreference(ctx, "theme", "light"))

		v, ok, err := s.GetPreference(ctx, "theme")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "light", v)
	})
}

func expense(title, category, amount string, date core.Date) core.Transaction {
	return core.Transaction{
		Title:       title,
		Category:    category,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		PaymentMode: core.PaymentCash,
	}
}
