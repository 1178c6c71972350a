package config

import (
	"context"
	"fmt"
	"os"
)

// SecretStore abstracts where runtime secrets come from so deployments can
// swap the environment for a vault without touching callers.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	GetWithDefault(ctx context.Context, key, fallback string) string
}

// EnvironmentSecretStore reads secrets from process environment variables.
type EnvironmentSecretStore struct{}

// NewEnvironmentSecretStore creates an environment-backed secret store.
func NewEnvironmentSecretStore() *EnvironmentSecretStore {
	return &EnvironmentSecretStore{}
}

func (s *EnvironmentSecretStore) Get(_ context.Context, key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("secret %s is not set", key)
	}
	return value, nil
}

func (s *EnvironmentSecretStore) GetWithDefault(_ context.Context, key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// LoadSecretsFromEnv overlays secret values onto an already-loaded config.
// It exists for deployments that keep secrets out of config files entirely.
func LoadSecretsFromEnv(ctx context.Context, cfg *Config, store SecretStore) {
	cfg.Auth.JWTSecret = store.GetWithDefault(ctx, "RANKKIT_AUTH_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Storage.SQL.DSN = store.GetWithDefault(ctx, "RANKKIT_STORAGE_SQL_DSN", cfg.Storage.SQL.DSN)
	cfg.Storage.ScoreLog.Redis.Password = store.GetWithDefault(ctx, "RANKKIT_STORAGE_REDIS_PASSWORD", cfg.Storage.ScoreLog.Redis.Password)
}
