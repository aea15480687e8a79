package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/services"
)

func adviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advise <message>",
		Short: "Ask the budgeting assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return fmt.Errorf("message is empty")
			}
			reply, err := a.advisor.Reply(ctx, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.BoxStyle.Render(reply))
			return nil
		}),
	}
}

func themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the display theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			var (
				theme services.Theme
				err   error
			)
			switch {
			case len(args) == 0:
				theme, err = a.themes.Current(ctx)
			case args[0] == "toggle":
				theme, err = a.themes.Toggle(ctx)
			default:
				theme, err = services.ParseTheme(args[0])
				if err == nil {
					err = a.themes.Set(ctx, theme)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(theme))
			return nil
		}),
	}
}
