package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func TestMirrorAppendAndIDs(t *testing.T) {
	ctx := context.Background()
	m := New()

	tx := core.Transaction{
		ID:          3,
		Title:       "Coffee",
		Amount:      decimal.RequireFromString("-4.5"),
		Date:        core.NewDate(2025, 3, 14),
		Category:    "Food & Dining",
		PaymentMode: core.PaymentCash,
	}
	ref, err := m.AppendTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	rows := m.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if got := rows[0][5]; got != "-4.50" {
		t.Errorf("amount column = %v, want -4.50", got)
	}
	if got := rows[0][1]; got != "2025-03-14" {
		t.Errorf("date column = %v, want 2025-03-14", got)
	}

	ids, err := m.MirroredIDs(ctx)
	if err != nil {
		t.Fatalf("MirroredIDs() error = %v", err)
	}
	if _, ok := ids[3]; !ok || len(ids) != 1 {
		t.Errorf("MirroredIDs() = %v, want {3}", ids)
	}
}

func TestMirrorRejectsInvalid(t *testing.T) {
	if _, err := New().AppendTransaction(context.Background(), core.Transaction{ID: 1}); err == nil {
		t.Error("AppendTransaction() should reject an invalid transaction")
	}
}
