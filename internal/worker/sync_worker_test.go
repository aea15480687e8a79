package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	sheetsmem "fintrack/internal/sheets/memory"
	"fintrack/internal/store/memory"
)

type failingMirror struct {
	*sheetsmem.Mirror
}

func (failingMirror) AppendTransaction(context.Context, core.Transaction) (string, error) {
	return "", errors.New("quota exceeded")
}

func addTx(t *testing.T, st *memory.Store, title, amount, category string) core.Transaction {
	t.Helper()
	tx, fields := core.BuildTransaction(core.TransactionInput{Title: title, Amount: amount, Category: category}, core.NewDate(2025, 3, 14).Time, nil)
	require.Empty(t, fields)
	id, err := st.AppendTransaction(context.Background(), tx)
	require.NoError(t, err)
	tx.ID = id
	return tx
}

func TestHandleTransactionCreated(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mirror := sheetsmem.New()
	w := NewSyncWorker(st, mirror, 10, log.Nop())

	tx := addTx(t, st, "Coffee", "4.50", "Food & Dining")

	require.NoError(t, w.HandleTransactionCreated(ctx, &amqp.TransactionCreatedMessage{ID: tx.ID}))
	require.Len(t, mirror.Rows(), 1)
	assert.Equal(t, "Coffee", mirror.Rows()[0][2])

	// redelivery does not duplicate the row
	require.NoError(t, w.HandleTransactionCreated(ctx, &amqp.TransactionCreatedMessage{ID: tx.ID}))
	assert.Len(t, mirror.Rows(), 1)
}

func TestHandleTransactionCreatedUnknownID(t *testing.T) {
	mirror := sheetsmem.New()
	w := NewSyncWorker(memory.New(), mirror, 10, log.Nop())

	err := w.HandleTransactionCreated(context.Background(), &amqp.TransactionCreatedMessage{ID: 404})

	assert.NoError(t, err)
	assert.Empty(t, mirror.Rows())
}

func TestHandleTransactionCreatedMirrorFailure(t *testing.T) {
	st := memory.New()
	tx := addTx(t, st, "Rent", "1200", "Housing")
	w := NewSyncWorker(st, failingMirror{sheetsmem.New()}, 10, log.Nop())

	err := w.HandleTransactionCreated(context.Background(), &amqp.TransactionCreatedMessage{ID: tx.ID})

	assert.ErrorContains(t, err, "quota exceeded")
}

func TestStartupSyncCheck(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mirror := sheetsmem.New()
	w := NewSyncWorker(st, mirror, 2, log.Nop())

	first := addTx(t, st, "Coffee", "4.50", "Food & Dining")
	addTx(t, st, "Paycheck", "1000", core.IncomeCategory)
	addTx(t, st, "Train", "12", "Transportation")

	_, err := mirror.AppendTransaction(ctx, first)
	require.NoError(t, err)

	require.NoError(t, w.StartupSyncCheck(ctx))
	rows := mirror.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "Paycheck", rows[1][2])
	assert.Equal(t, "Train", rows[2][2])

	require.NoError(t, w.StartupSyncCheck(ctx))
	assert.Len(t, mirror.Rows(), 3)
}

func TestStartupSyncCheckRespectsBatchSize(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mirror := sheetsmem.New()
	w := NewSyncWorker(st, mirror, 2, log.Nop())

	for _, title := range []string{"a", "b", "c", "d", "e"} {
		addTx(t, st, title, "1", "Shopping")
	}

	require.NoError(t, w.StartupSyncCheck(ctx))
	assert.Len(t, mirror.Rows(), 2)
	require.NoError(t, w.StartupSyncCheck(ctx))
	assert.Len(t, mirror.Rows(), 4)
}
