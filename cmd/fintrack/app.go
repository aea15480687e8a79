package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/advisor"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// app is the wiring shared by every command.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	bus     *events.Bus
	ledger  *services.LedgerService
	themes  *services.ThemeService
	advisor *advisor.Advisor
}

// openApp loads configuration, opens the backend and seeds the default
// budgets when the store has none.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cli.LoadEnvFile()
	cfg := config.Load()
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(cfg, cmd.ErrOrStderr())

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	ledger := services.NewLedgerService(res.Store, bus,
		services.WithChangeFeed(res.Feed),
		services.WithStrictCategories(cfg.StrictCategories),
		services.WithSpentCacheSize(cfg.SpentCacheSize),
		services.WithLogger(logger),
	)

	if _, err := ledger.InitializeBudgets(ctx); err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("initialize budgets: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		bus:     bus,
		ledger:  ledger,
		themes:  services.NewThemeService(res.Store, bus, services.Theme(cfg.DefaultTheme)),
		advisor: advisor.New(cfg.AdvisorDelay),
	}, nil
}

// applyFlags lets the persistent flags override the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("backend"); v != "" {
		cfg.DataBackend = v
	}
	if v, _ := flags.GetString("db"); v != "" {
		cfg.SQLiteDBPath = v
	}
}

func (a *app) close() {
	if err := a.ledger.Close(); err != nil {
		a.logger.Error("Failed to close ledger", log.FieldError, err)
	}
}

// withApp runs fn with an opened app and closes it afterwards.
func withApp(fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), cmd, a, args)
	}
}
