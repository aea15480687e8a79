// Command fintrack-worker mirrors stored transactions into a Google Sheets
// spreadsheet. It reacts to transaction.created messages and periodically
// backfills rows that were missed.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	memsheet "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		log.Default(log.ComponentWorker).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, os.Stdout).WithComponent(log.ComponentWorker)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	logger.Info("Starting fintrack-worker", "backend", cfg.DataBackend, log.FieldOperation, log.OpStartup)

	// The worker only reads the store; it consumes the feed itself.
	storeCfg := *cfg
	storeCfg.AMQPURL = ""
	res, err := cli.OpenBackend(ctx, &storeCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to release backend", log.FieldError, err)
		}
	}()

	mirror, err := openMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}

	syncWorker := worker.NewSyncWorker(res.Store, mirror, cfg.SyncBatchSize, logger)
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := syncWorker.StartupSyncCheck(gctx); err != nil {
					logger.Error("Periodic sync failed", log.FieldError, err, log.FieldOperation, log.OpSync)
				}
			}
		}
	})

	if cfg.AMQPURL != "" {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer consumer.Close()

		g.Go(func() error {
			err := consumer.ConsumeWithRetry(gctx, syncWorker.HandleTransactionCreated)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic sync", "interval", cfg.SyncInterval.String())
	}

	return g.Wait()
}

// openMirror returns the Google Sheets client, or an in-memory mirror when
// no spreadsheet is configured.
func openMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Mirror, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("Google Sheets disabled, mirroring to memory")
		return memsheet.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
