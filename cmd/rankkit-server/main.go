package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"rankkit/core"
	"rankkit/integrations/webhook"
)

func main() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	app, err := BuildApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	cfg := app.Config

	slog.Info("starting rankkit server",
		"environment", cfg.Environment,
		"profile", cfg.Profile,
		"address", cfg.Server.Address,
		"catalog", cfg.Storage.Catalog,
		"score_log", cfg.Storage.ScoreLog.Enabled)

	// Rebuild in-memory boards from the score log before accepting traffic.
	if err := app.Service.Rehydrate(ctx); err != nil {
		slog.Error("failed to rehydrate leaderboards", "error", err)
		os.Exit(1)
	}

	// Evict idle boards; rehydration brings them back on demand.
	app.Service.Boards().StartSweeper(ctx, cfg.Boards.TTL, cfg.Boards.SweepInterval, func(name core.BoardName) {
		slog.Info("evicted idle leaderboard", "leaderboard", name)
	})

	// Forward events to configured webhook endpoints.
	if len(cfg.Webhooks.Endpoints) > 0 {
		sink := webhook.New(cfg.Webhooks.Endpoints)
		_, events := app.Hub.Subscribe(256)
		go func() {
			for ev := range events {
				sink.OnEvent(ev)
			}
		}()
	}

	srv := app.Server

	// Start server in a goroutine
	go func() {
		slog.Info("server listening", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				return
			}
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server", "timeout", cfg.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during server shutdown", "error", err)
		os.Exit(1)
	}

	app.Service.Close()
	slog.Info("server stopped")
}
