// Package sheets defines the spreadsheet mirror that receives a copy of
// every stored transaction.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Columns of a mirrored row, in order.
var Header = []string{"ID", "Date", "Title", "Category", "Payment Mode", "Amount"}

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		// AppendTransaction writes t as one row and returns a reference to it.
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// MirrorReader reports which transactions already have a row.
	MirrorReader interface {
		MirroredIDs(ctx context.Context) (map[int64]struct{}, error)
	}

	Mirror interface {
		TransactionWriter
		MirrorReader
	}
)

// Row renders t in Header order.
func Row(t core.Transaction) []any {
	return []any{t.ID, t.Date.ISO(), t.Title, t.Category, string(t.PaymentMode), t.Amount.StringFixed(2)}
}
