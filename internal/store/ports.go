// Package store defines the record store ports implemented by the memory
// and SQLite backends.
package store

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		// AppendTransaction stores t and returns its newly assigned id.
		// CreatedAt is set by the store when zero.
		AppendTransaction(ctx context.Context, t core.Transaction) (int64, error)
	}

	TransactionReader interface {
		// ListTransactions returns every transaction, newest date first.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		TransactionsByCategory(ctx context.Context, category string) ([]core.Transaction, error)
		TransactionsByPaymentMode(ctx context.Context, mode core.PaymentMode) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	}

	BudgetStore interface {
		// AppendBudgets stores all budgets or none of them.
		AppendBudgets(ctx context.Context, budgets []core.Budget) ([]int64, error)
		// ListBudgets returns budgets in insertion order.
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		BudgetsByCategory(ctx context.Context, category string) ([]core.Budget, error)
		CountBudgets(ctx context.Context) (int, error)
	}

	// PreferenceStore holds small string settings such as the theme flag.
	PreferenceStore interface {
		GetPreference(ctx context.Context, key string) (value string, ok bool, err error)
		SetPreference(ctx context.Context, key, value string) error
	}

	Store interface {
		TransactionWriter
		TransactionReader
		BudgetStore
		PreferenceStore
		Close() error
	}
)
