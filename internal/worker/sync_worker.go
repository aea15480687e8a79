package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/store"
)

// SyncWorker copies stored transactions into the spreadsheet mirror
type SyncWorker struct {
	store     store.TransactionReader
	mirror    sheets.Mirror
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(st store.TransactionReader, mirror sheets.Mirror, batchSize int, logger *log.Logger) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &SyncWorker{
		store:     st,
		mirror:    mirror,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleTransactionCreated mirrors the transaction named by msg. Messages
// for unknown transactions are dropped, rows that already exist are not
// written twice.
func (w *SyncWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	w.logger.InfoContext(ctx, "Processing transaction message",
		log.FieldTransactionID, msg.ID,
		log.FieldCategory, msg.Category)

	t, err := w.store.GetTransaction(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "Transaction not found, dropping message", log.FieldTransactionID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from store: %w", err)
	}

	mirrored, err := w.mirror.MirroredIDs(ctx)
	if err != nil {
		return fmt.Errorf("read mirrored ids: %w", err)
	}
	if _, ok := mirrored[t.ID]; ok {
		w.logger.DebugContext(ctx, "Transaction already mirrored", log.FieldTransactionID, t.ID)
		return nil
	}

	return w.syncTransaction(ctx, t)
}

// StartupSyncCheck mirrors every stored transaction that has no row yet.
// It recovers from lost messages and worker downtime. At most batchSize
// rows are written per call.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions for startup check: %w", err)
	}
	mirrored, err := w.mirror.MirroredIDs(ctx)
	if err != nil {
		return fmt.Errorf("read mirrored ids: %w", err)
	}

	var pending []core.Transaction
	for _, t := range txs {
		if _, ok := mirrored[t.ID]; !ok {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		w.logger.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}
	// Oldest first so the sheet keeps insertion order
	for i, j := 0, len(pending)-1; i < j; i, j = i+1, j-1 {
		pending[i], pending[j] = pending[j], pending[i]
	}
	if len(pending) > w.batchSize {
		pending = pending[:w.batchSize]
	}

	w.logger.InfoContext(ctx, "Found pending transactions on startup, processing...", log.FieldCount, len(pending))

	successCount, errorCount := 0, 0
	for _, t := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.syncTransaction(ctx, t); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror transaction during startup",
				log.FieldTransactionID, t.ID, log.FieldError, err)
			errorCount++
			continue
		}
		successCount++
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, t core.Transaction) error {
	ref, err := w.mirror.AppendTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("append transaction %d to mirror: %w", t.ID, err)
	}
	log.NewEvents(w.logger).TransactionMirrored(ctx, t.ID, ref)
	return nil
}
