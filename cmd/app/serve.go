package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // For pprof profiling
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"crypto_dash/internal/dashboard"
	"crypto_dash/internal/domain"
	"crypto_dash/internal/server"
	"crypto_dash/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the market feed and serve the dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		pprof, _ := cmd.Flags().GetBool("pprof")
		if addr == "" {
			addr = bootstrap.Config.Server.Addr
		}

		// Graceful Shutdown Context
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if pprof {
			go func() {
				// Localhost only for security
				slog.Info("🕵️ Pprof server started on localhost:6060")
				if err := http.ListenAndServe("localhost:6060", nil); err != nil {
					slog.Error("Pprof server failed", slog.Any("error", err))
				}
			}()
		}

		var (
			srv     *server.Server
			syncing atomic.Bool
		)
		market := bootstrap.NewMarketService(service.WithOnChange(func(state domain.MarketState) {
			if srv != nil {
				srv.NotifyChange(state)
			}
			// Background asset sync; skipped while one is running
			if !state.HasError() && syncing.CompareAndSwap(false, true) {
				go func() {
					defer syncing.Store(false)
					bootstrap.SyncAssets(ctx, state.Coins)
				}()
			}
		}))

		srv = server.New(server.Options{
			Dashboard:   dashboard.New(market),
			Market:      market,
			Details:     bootstrap.NewDetailService(),
			Metrics:     bootstrap.Metrics,
			CORSOrigins: bootstrap.Config.Server.CORSOrigins,
		})

		g, gctx := errgroup.WithContext(ctx)

		market.Start(gctx)
		slog.InfoContext(ctx, "✅ Market data polling started", slog.Duration("interval", bootstrap.Config.RefreshInterval()))

		g.Go(func() error {
			return srv.ListenAndServe(gctx, addr)
		})
		g.Go(func() error {
			<-gctx.Done()
			market.Stop()
			return nil
		})

		slog.InfoContext(ctx, "✨ Crypto Dash fully operational. Press Ctrl+C to exit.", slog.String("addr", addr))

		err := g.Wait()
		slog.Info("👋 Shutting down gracefully...")
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	serveCmd.Flags().Bool("pprof", false, "expose pprof on localhost:6060")
}
