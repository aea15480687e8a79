package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"fintrack/internal/core"
)

const progressWidth = 20

// ProgressBar draws percent (0 to 100) as a bar of fixed width.
func ProgressBar(percent int, color lipgloss.Color) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * progressWidth / 100
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		SubtleStyle.Render(strings.Repeat("░", progressWidth-filled))
}

// RenderBudgets writes one row per budget and a totals box.
func RenderBudgets(w io.Writer, stats []core.BudgetWithSpent) error {
	if _, err := fmt.Fprintln(w, FormatTitle("Budgets")); err != nil {
		return err
	}
	if len(stats) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No budgets yet."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		TableHeaderStyle.Render("Category"),
		TableHeaderStyle.Render("Spent"),
		TableHeaderStyle.Render("Limit"),
		TableHeaderStyle.Render("Progress"))

	for _, b := range stats {
		pct := core.Percentage(b.Spent, b.Limit)
		spent := core.FormatCurrency(b.Spent)
		if b.OverBudget() {
			spent = ErrorStyle.Render(spent + " !")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %3d%%\n",
			lipgloss.NewStyle().Foreground(BudgetColor(b.Color)).Render(b.Category),
			spent,
			core.FormatCurrency(b.Limit),
			ProgressBar(pct, BudgetColor(b.Color)),
			pct)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	totals := core.ComputeTotals(stats)
	summary := fmt.Sprintf("Total spent %s of %s", core.FormatCurrency(totals.TotalSpent), core.FormatCurrency(totals.TotalLimit))
	if totals.OverBudgetCount > 0 {
		summary += "\n" + WarningStyle.Render(fmt.Sprintf("%d categories over budget", totals.OverBudgetCount))
	}
	_, err := fmt.Fprintln(w, BoxStyle.Render(summary))
	return err
}

// RenderTransactions writes transactions grouped under their date label.
func RenderTransactions(w io.Writer, txs []core.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No transactions found."))
		return err
	}

	for _, g := range core.GroupByDateLabel(txs) {
		if _, err := fmt.Fprintln(w, SubtitleStyle.Render(g.Label)); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, t := range g.Transactions {
			amount := core.FormatCurrency(t.Amount)
			if t.IsIncome() {
				amount = SuccessStyle.Render("+" + amount)
			}
			fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\t%s\n", t.ID, t.Title, SubtleStyle.Render(t.Category), t.PaymentMode, amount)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// RenderFieldErrors lists validation messages in field order.
func RenderFieldErrors(w io.Writer, fields core.FieldErrors) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", ErrorStyle.Render("✗"), BoldStyle.Render(k), fields[k]); err != nil {
			return err
		}
	}
	return nil
}
