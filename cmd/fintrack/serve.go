package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/loop"
	"fintrack/internal/views"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and the websocket change stream",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, _ *cobra.Command, a *app, _ []string) error {
			if port == "" {
				port = a.cfg.Port
			}

			lp := loop.New(a.logger)
			defer lp.Close()

			budgets := views.NewBudgetsView(a.ledger, a.bus, lp, a.logger)
			budgets.Activate(ctx)
			defer budgets.Close()

			srv := apphttp.NewServer(apphttp.Config{
				Addr:           ":" + port,
				RateLimitRPS:   a.cfg.RateLimitRPS,
				RateLimitBurst: a.cfg.RateLimitBurst,
				AllowedOrigins: a.cfg.AllowedOrigins,
			}, apphttp.Deps{
				Ledger:  a.ledger,
				Themes:  a.themes,
				Advisor: a.advisor,
				Bus:     a.bus,
				Budgets: budgets,
			}, a.logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("Starting fintrack server", "port", port, "backend", a.cfg.DataBackend, log.FieldOperation, log.OpStartup)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			a.logger.Info("Server stopped gracefully")
			return nil
		}),
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port, overrides PORT")
	return cmd
}
