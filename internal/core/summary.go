package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SpentByCategory sums the magnitude of every expense whose category
// matches exactly. Income and zero amounts are ignored.
func SpentByCategory(txs []Transaction, category string) decimal.Decimal {
	spent := decimal.Zero
	for _, t := range txs {
		if t.Category != category || !t.Amount.IsNegative() {
			continue
		}
		spent = spent.Add(t.Amount.Abs())
	}
	return spent
}

// BudgetStats attaches the spent amount to every budget, keeping the
// budgets' order.
func BudgetStats(budgets []Budget, txs []Transaction) []BudgetWithSpent {
	byCategory := make(map[string]decimal.Decimal, len(budgets))
	for _, t := range txs {
		if !t.Amount.IsNegative() {
			continue
		}
		byCategory[t.Category] = byCategory[t.Category].Add(t.Amount.Abs())
	}

	out := make([]BudgetWithSpent, len(budgets))
	for i, b := range budgets {
		out[i] = BudgetWithSpent{Budget: b, Spent: byCategory[b.Category]}
	}
	return out
}

// ComputeTotals reduces budget stats to portfolio totals.
func ComputeTotals(stats []BudgetWithSpent) Totals {
	totals := Totals{TotalSpent: decimal.Zero, TotalLimit: decimal.Zero}
	for _, b := range stats {
		totals.TotalSpent = totals.TotalSpent.Add(b.Spent)
		totals.TotalLimit = totals.TotalLimit.Add(b.Limit)
		if b.Spent.GreaterThan(b.Limit) {
			totals.OverBudgetCount++
		}
	}
	return totals
}

// Percentage is spent as a whole percentage of limit, capped at 100.
func Percentage(spent, limit decimal.Decimal) int {
	if !limit.IsPositive() {
		return 0
	}
	p := spent.Div(limit).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return int(p)
}

func (b BudgetWithSpent) OverBudget() bool {
	return b.Spent.GreaterThan(b.Limit)
}

func (b BudgetWithSpent) Remaining() decimal.Decimal {
	return b.Limit.Sub(b.Spent)
}

// TransactionKind selects income, expense or all transactions.
type TransactionKind string

const (
	KindAll     TransactionKind = "all"
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// FilterTransactions keeps transactions of the given kind whose title or
// category contains search, case-insensitively.
func FilterTransactions(txs []Transaction, kind TransactionKind, search string) []Transaction {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Category), search) {
			continue
		}
		switch kind {
		case KindIncome:
			if !t.IsIncome() {
				continue
			}
		case KindExpense:
			if !t.IsExpense() {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// DateGroup is a run of transactions sharing a display date.
type DateGroup struct {
	Label        string
	Transactions []Transaction
}

// GroupByDateLabel groups by exact display label, labels in first-seen
// order.
func GroupByDateLabel(txs []Transaction) []DateGroup {
	index := map[string]int{}
	var groups []DateGroup
	for _, t := range txs {
		label := t.DateLabel()
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DateGroup{Label: label})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}

// Chart data shapes consumed by a renderer.
type (
	PieSlice struct {
		Name     string          `json:"name"`
		Value    decimal.Decimal `json:"value"`
		Color    string          `json:"color"`
		IconName string          `json:"iconName"`
	}

	BarPoint struct {
		Name     string          `json:"name"`
		Spent    decimal.Decimal `json:"spent"`
		Limit    decimal.Decimal `json:"limit"`
		Color    string          `json:"color"`
		IconName string          `json:"iconName"`
	}
)

func PieSlices(stats []BudgetWithSpent) []PieSlice {
	out := make([]PieSlice, len(stats))
	for i, b := range stats {
		out[i] = PieSlice{
			Name:     b.Category,
			Value:    b.Spent,
			Color:    strings.TrimPrefix(b.Color, "bg-"),
			IconName: b.IconName,
		}
	}
	return out
}

func BarSeries(stats []BudgetWithSpent) []BarPoint {
	out := make([]BarPoint, len(stats))
	for i, b := range stats {
		out[i] = BarPoint{
			Name:     b.Category,
			Spent:    b.Spent,
			Limit:    b.Limit,
			Color:    strings.TrimPrefix(b.Color, "bg-"),
			IconName: b.IconName,
		}
	}
	return out
}
