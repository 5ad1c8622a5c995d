package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Proton-105/citrine-bot/internal/continuation"
	"github.com/Proton-105/citrine-bot/internal/health"
	"github.com/Proton-105/citrine-bot/internal/middleware"
	"github.com/Proton-105/citrine-bot/internal/transport/telegram"
	"github.com/Proton-105/citrine-bot/pkg/config"
	"github.com/Proton-105/citrine-bot/pkg/graceful"
	"github.com/Proton-105/citrine-bot/pkg/metrics"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Telegram and dispatch events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) (err error) {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	log := a.log
	log.Info("starting citrine bot", slog.String("env", a.cfg.AppEnv), slog.String("version", version))

	guard := middleware.NewFloodGuard(a.limiter, a.cfg.Bot.FloodLimit, a.cfg.Bot.FloodWindow, log)

	transport, err := telegram.New(a.cfg.Bot, log, guard.Handle)
	if err != nil {
		return err
	}
	a.checker.AddCheck("telegram", health.NewTelegramChecker(transport.Telebot()))

	engine := a.newEngine(transport.Shell())
	transport.Bind(engine)

	config.Watch(a.v, log, reloadIdentity(engine))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return transport.Run(gCtx)
	})

	if a.cfg.Server.Addr != "" {
		srv := graceful.NewServer(log, &http.Server{
			Addr:              a.cfg.Server.Addr,
			Handler:           health.NewHandler(a.checker, log),
			ReadHeaderTimeout: 5 * time.Second,
		}, a.cfg.Server.ShutdownTimeout)

		g.Go(func() error {
			return srv.ListenAndServe(gCtx)
		})
	}

	if a.cfg.Dispatch.ContinuationTTL > 0 {
		sweeper := continuation.NewSweeper(engine.Continuations(), a.cfg.Dispatch.SweepInterval, log)
		g.Go(func() error {
			sweeper.Run(gCtx)
			return nil
		})
	}

	collector := metrics.NewTableCollector(engine.Continuations(), 0)
	g.Go(func() error {
		collector.Run(gCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("bot stopped with error", slog.Any("error", err))
		return err
	}

	log.Info("citrine bot stopped")
	return nil
}
