package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestRenderBudgets(t *testing.T) {
	stats := []core.BudgetWithSpent{
		{Budget: core.Budget{Category: "Food & Dining", Limit: decimal.NewFromInt(600), Color: "bg-violet-500"}, Spent: decimal.RequireFromString("4.50")},
		{Budget: core.Budget{Category: "Entertainment", Limit: decimal.NewFromInt(200), Color: "bg-pink-500"}, Spent: decimal.NewFromInt(250)},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderBudgets(&buf, stats))
	out := buf.String()

	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "$4.50")
	assert.Contains(t, out, "$600.00")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "Total spent $254.50 of $800.00")
	assert.Contains(t, out, "1 categories over budget")
}

func TestRenderBudgetsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderBudgets(&buf, nil))
	assert.Contains(t, buf.String(), "No budgets yet.")
}

func TestRenderTransactionsGroupsByDate(t *testing.T) {
	txs := []core.Transaction{
		{ID: 2, Title: "Paycheck", Amount: decimal.NewFromInt(1000), Category: core.IncomeCategory, PaymentMode: core.PaymentBank, Date: core.NewDate(2024, 3, 16)},
		{ID: 1, Title: "Coffee", Amount: decimal.RequireFromString("-4.50"), Category: "Food & Dining", PaymentMode: core.PaymentCard, Date: core.NewDate(2024, 3, 15)},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderTransactions(&buf, txs))
	out := buf.String()

	mar16 := strings.Index(out, "Mar 16, 2024")
	mar15 := strings.Index(out, "Mar 15, 2024")
	require.True(t, mar16 >= 0 && mar15 > mar16, out)
	assert.Contains(t, out, "+$1,000.00")
	assert.Contains(t, out, "-$4.50")
}

func TestRenderTransactionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTransactions(&buf, nil))
	assert.Contains(t, buf.String(), "No transactions found.")
}

func TestRenderFieldErrorsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFieldErrors(&buf, core.FieldErrors{"title": "Title is required", "amount": "Enter a valid amount"}))
	out := buf.String()
	assert.Less(t, strings.Index(out, "amount"), strings.Index(out, "title"))
}

func TestProgressBarClamps(t *testing.T) {
	full := ProgressBar(150, PrimaryColor)
	assert.Equal(t, progressWidth, strings.Count(full, "█"))
	empty := ProgressBar(-5, PrimaryColor)
	assert.Equal(t, progressWidth, strings.Count(empty, "░"))
}
