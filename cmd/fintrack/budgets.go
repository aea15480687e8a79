package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/loop"
	"fintrack/internal/views"
)

func budgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budgets",
		Short: "Show spending against every budget",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			view := views.NewBudgetsView(a.ledger, a.bus, loop.Inline{}, a.logger)
			state := view.Refresh(ctx)
			if state.Err != nil {
				return fmt.Errorf("load budgets: %w", state.Err)
			}
			return cli.RenderBudgets(cmd.OutOrStdout(), state.Data)
		}),
	}
}

func spentCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "spent <category>",
		Short:   "Show the amount spent in a category",
		Example: `  fintrack spent "Food & Dining"`,
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			spent, err := a.ledger.SpentByCategory(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cli.BoldStyle.Render(args[0]), core.FormatCurrency(spent))
			return nil
		}),
	}
}
