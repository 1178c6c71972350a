package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	mem "rankkit/adapters/memory"
	"rankkit/api/httpapi"
	"rankkit/auth"
	"rankkit/core"
	"rankkit/event"
	"rankkit/rank"
	"rankkit/realtime"
	"rankkit/service"
)

// Quick-start server: in-memory everything, auto-created boards, a fixed
// demo secret. Not for production.
func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	store := mem.New()
	hub := realtime.NewHub()
	svc := rank.New(
		rank.WithRealtime(hub),
		rank.WithCatalog(store),
		rank.WithDispatchMode(event.DispatchAsync),
		rank.WithPolicy(service.Policy{AutoCreate: true}),
	)

	tokens, err := auth.NewTokenManager("demo-secret-demo-secret-demo-secret!", time.Hour)
	if err != nil {
		slog.Error("token manager", "error", err)
		os.Exit(1)
	}
	authn := auth.NewHandler(store, tokens, auth.Config{})

	handler := httpapi.NewMux(svc, authn, tokens, hub, httpapi.Options{
		PathPrefix:      "/api",
		AllowCORSOrigin: "*",
	})

	// seed a couple of boards so the API has something to show
	ctx := context.Background()
	for _, name := range []string{"daily", "weekly"} {
		if _, err := svc.CreateLeaderboard(ctx, core.BoardName(name)); err != nil {
			slog.Warn("seed leaderboard", "leaderboard", name, "error", err)
		}
	}

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", handler); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}
