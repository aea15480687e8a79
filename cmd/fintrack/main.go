package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/log"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Personal finance tracker",
		Long: `fintrack records income and expense transactions, tracks spending
against per-category budgets and serves the ledger over HTTP.

Configuration is read from the environment and an optional .env file.
Set DATA_BACKEND=sqlite to keep data between runs.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	pf.String("backend", "", "override DATA_BACKEND (memory, sqlite)")
	pf.String("db", "", "override SQLITE_DB_PATH")

	root.AddCommand(
		addCmd(),
		listCmd(),
		budgetsCmd(),
		spentCmd(),
		adviseCmd(),
		themeCmd(),
		serveCmd(),
	)
	return root
}

func main() {
	ctx, cancel := cli.SignalContext(context.Background(), log.Default(log.ComponentApp))
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}
