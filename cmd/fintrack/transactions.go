package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/loop"
	"fintrack/internal/views"
)

var errInvalidInput = errors.New("transaction not added")

func addCmd() *cobra.Command {
	var in core.TransactionInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record an income or expense. The amount is entered as a positive number;
it is stored as income when the category is Income and as an expense
otherwise.`,
		Example: `  fintrack add --title Coffee --amount 4.50 --category "Food & Dining" --mode card
  fintrack add --title Paycheck --amount 1000 --category Income --mode bank --date 2024-03-15`,
		Args: cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			view := views.NewTransactionsView(a.ledger, a.bus, loop.Inline{}, a.logger)
			view.Activate(ctx)
			defer view.Close()

			ok, fields := view.Add(ctx, in)
			if !ok {
				if len(fields) > 0 {
					if err := cli.RenderFieldErrors(cmd.ErrOrStderr(), fields); err != nil {
						return err
					}
					return errInvalidInput
				}
				return fmt.Errorf("add transaction: %w", view.State().Err)
			}

			state := view.State()
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Transaction added (%d total)", len(state.Data))))
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "short description")
	f.StringVar(&in.Amount, "amount", "", "amount, positive")
	f.StringVar(&in.Category, "category", "", "budget category, or Income")
	f.StringVar(&in.PaymentMode, "mode", string(core.PaymentCash), "payment mode: cash, bank or card")
	f.StringVar(&in.Date, "date", "", "date as YYYY-MM-DD, today when empty")
	return cmd
}

func listCmd() *cobra.Command {
	var (
		kind   string
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions grouped by date",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			view := views.NewTransactionsView(a.ledger, a.bus, loop.Inline{}, a.logger)
			state := view.Refresh(ctx)
			if state.Err != nil {
				return fmt.Errorf("list transactions: %w", state.Err)
			}

			k := core.TransactionKind(kind)
			switch k {
			case core.KindAll, core.KindIncome, core.KindExpense:
			default:
				return fmt.Errorf("invalid --kind %q: must be all, income or expense", kind)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Transactions"))
			return cli.RenderTransactions(out, core.FilterTransactions(state.Data, k, search))
		}),
	}

	cmd.Flags().StringVar(&kind, "kind", string(core.KindAll), "all, income or expense")
	cmd.Flags().StringVar(&search, "search", "", "match title or category, case-insensitive")
	return cmd
}
