package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// JSON shapes of the API. Amounts are fixed two-decimal strings.
type (
	transactionJSON struct {
		ID          int64     `json:"id"`
		Title       string    `json:"title"`
		Amount      string    `json:"amount"`
		Date        string    `json:"date"`
		DateLabel   string    `json:"dateLabel"`
		Category    string    `json:"category"`
		PaymentMode string    `json:"paymentMode"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	budgetJSON struct {
		ID         int64  `json:"id"`
		Category   string `json:"category"`
		Limit      string `json:"limit"`
		Spent      string `json:"spent"`
		Remaining  string `json:"remaining"`
		Percentage int    `json:"percentage"`
		OverBudget bool   `json:"overBudget"`
		Color      string `json:"color"`
		IconName   string `json:"iconName"`
	}

	totalsJSON struct {
		TotalSpent      string `json:"totalSpent"`
		TotalLimit      string `json:"totalLimit"`
		OverBudgetCount int    `json:"overBudgetCount"`
	}

	budgetsResponse struct {
		Budgets []budgetJSON    `json:"budgets"`
		Totals  totalsJSON      `json:"totals"`
		Pie     []core.PieSlice `json:"pie"`
		Bar     []core.BarPoint `json:"bar"`
	}

	errorResponse struct {
		Error  string           `json:"error"`
		Fields core.FieldErrors `json:"fields,omitempty"`
	}
)

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Title:       t.Title,
		Amount:      t.Amount.StringFixed(2),
		Date:        t.Date.ISO(),
		DateLabel:   t.DateLabel(),
		Category:    t.Category,
		PaymentMode: string(t.PaymentMode),
		CreatedAt:   t.CreatedAt,
	}
}

func toTransactionsJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, t := range txs {
		out[i] = toTransactionJSON(t)
	}
	return out
}

func toBudgetsResponse(stats []core.BudgetWithSpent) budgetsResponse {
	budgets := make([]budgetJSON, len(stats))
	for i, b := range stats {
		budgets[i] = budgetJSON{
			ID:         b.ID,
			Category:   b.Category,
			Limit:      b.Limit.StringFixed(2),
			Spent:      b.Spent.StringFixed(2),
			Remaining:  b.Remaining().StringFixed(2),
			Percentage: core.Percentage(b.Spent, b.Limit),
			OverBudget: b.OverBudget(),
			Color:      b.Color,
			IconName:   b.IconName,
		}
	}
	totals := core.ComputeTotals(stats)
	return budgetsResponse{
		Budgets: budgets,
		Totals: totalsJSON{
			TotalSpent:      totals.TotalSpent.StringFixed(2),
			TotalLimit:      totals.TotalLimit.StringFixed(2),
			OverBudgetCount: totals.OverBudgetCount,
		},
		Pie: core.PieSlices(stats),
		Bar: core.BarSeries(stats),
	}
}

// writeJSON encodes v with status. Encoding errors are only logged since
// the header is already out.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, fields core.FieldErrors) {
	writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: fields})
}
