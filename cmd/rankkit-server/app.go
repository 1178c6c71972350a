package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	jsonfileAdapter "rankkit/adapters/jsonfile"
	mem "rankkit/adapters/memory"
	redisAdapter "rankkit/adapters/redis"
	sqlxAdapter "rankkit/adapters/sqlx"
	"rankkit/api/httpapi"
	"rankkit/auth"
	"rankkit/config"
	"rankkit/event"
	"rankkit/rank"
	"rankkit/realtime"
	"rankkit/service"
)

// App aggregates the assembled server components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Hub     *realtime.Hub
	Service *service.RankService
	Tokens  *auth.TokenManager
	Auth    *auth.Handler
	Handler http.Handler
	Server  *http.Server
}

// storage is the combined surface the catalog adapters expose: leaderboard
// catalog plus user accounts.
type storage interface {
	service.Catalog
	auth.UserStore
}

func provideConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Environment == config.EnvProduction {
		config.LoadSecretsFromEnv(ctx, cfg, config.NewEnvironmentSecretStore())
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideStorage(cfg *config.Config) (storage, error) {
	return setupStorage(cfg)
}

func provideScoreLog(cfg *config.Config) (service.ScoreLog, error) {
	if !cfg.Storage.ScoreLog.Enabled {
		return nil, nil
	}
	return redisAdapter.New(cfg.Storage.ScoreLog.Redis)
}

func provideService(hub *realtime.Hub, store storage, scorelog service.ScoreLog, cfg *config.Config) *service.RankService {
	return rank.New(
		rank.WithRealtime(hub),
		rank.WithCatalog(store),
		rank.WithScoreLog(scorelog),
		rank.WithDispatchMode(event.DispatchAsync),
		rank.WithPolicy(service.Policy{
			AutoCreate:   cfg.Boards.AutoCreate,
			DefaultLimit: cfg.Boards.DefaultLimit,
			MaxLimit:     cfg.Boards.MaxLimit,
		}),
	)
}

func provideTokens(cfg *config.Config) (*auth.TokenManager, error) {
	return auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func provideAuth(store storage, tokens *auth.TokenManager, cfg *config.Config) *auth.Handler {
	return auth.NewHandler(store, tokens, auth.Config{
		BcryptCost:     cfg.Auth.BcryptCost,
		MinPasswordLen: cfg.Auth.MinPasswordLen,
	})
}

func provideHandler(svc *service.RankService, authn *auth.Handler, tokens *auth.TokenManager, hub *realtime.Hub, cfg *config.Config) http.Handler {
	return httpapi.NewMux(svc, authn, tokens, hub, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	out := os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the configured catalog adapter.
func setupStorage(cfg *config.Config) (storage, error) {
	switch cfg.Storage.Catalog {
	case "memory":
		return mem.New(), nil
	case "sql":
		store, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		return store, nil
	case "file":
		return jsonfileAdapter.New(cfg.Storage.File.Path)
	default:
		return nil, fmt.Errorf("unknown catalog adapter: %s", cfg.Storage.Catalog)
	}
}
