package views

import (
	"context"
	"errors"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/loop"
)

// Ledger is what the views need from the ledger service.
type Ledger interface {
	Transactions(ctx context.Context) ([]core.Transaction, error)
	BudgetStats(ctx context.Context) ([]core.BudgetWithSpent, error)
	AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
}

// TransactionsView lists every transaction, newest first.
type TransactionsView struct {
	*Query[[]core.Transaction]
	ledger Ledger
}

func NewTransactionsView(ledger Ledger, bus Subscriber, sched loop.Scheduler, logger *log.Logger) *TransactionsView {
	return &TransactionsView{
		Query:  NewQuery("transactions", ledger.Transactions, bus, sched, logger),
		ledger: ledger,
	}
}

// Add submits a form. It returns false with the per-field errors when
// validation fails. A store failure sets the view error and returns false
// with no field errors. On success the view refreshes through the bus.
func (v *TransactionsView) Add(ctx context.Context, in core.TransactionInput) (bool, core.FieldErrors) {
	if _, err := v.ledger.AddTransaction(ctx, in); err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return false, ve.Fields
		}
		v.setError(err)
		return false, nil
	}
	return true, nil
}

// BudgetsView lists every budget together with its spent amount.
type BudgetsView struct {
	*Query[[]core.BudgetWithSpent]
}

func NewBudgetsView(ledger Ledger, bus Subscriber, sched loop.Scheduler, logger *log.Logger) *BudgetsView {
	return &BudgetsView{Query: NewQuery("budgets", ledger.BudgetStats, bus, sched, logger)}
}

// Totals summarises the current data.
func (v *BudgetsView) Totals() core.Totals {
	return core.ComputeTotals(v.State().Data)
}
