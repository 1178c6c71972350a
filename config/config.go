package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rankkit/adapters/redis"
	"rankkit/adapters/sqlx"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete application configuration
type Config struct {
	// Environment and profile settings
	Environment Environment `json:"environment" env:"RANKKIT_ENV"`
	Profile     string      `json:"profile" env:"RANKKIT_PROFILE"`

	// Server configuration
	Server ServerConfig `json:"server"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// Auth configuration
	Auth AuthConfig `json:"auth"`

	// Leaderboard behavior
	Boards BoardsConfig `json:"boards"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Security configuration
	Security SecurityConfig `json:"security"`

	// Outbound integrations
	Webhooks WebhookConfig `json:"webhooks"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address           string        `json:"address" env:"RANKKIT_SERVER_ADDR"`
	PathPrefix        string        `json:"path_prefix" env:"RANKKIT_SERVER_PATH_PREFIX"`
	CORSOrigin        string        `json:"cors_origin" env:"RANKKIT_SERVER_CORS_ORIGIN"`
	ReadTimeout       time.Duration `json:"read_timeout" env:"RANKKIT_SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `json:"write_timeout" env:"RANKKIT_SERVER_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `json:"idle_timeout" env:"RANKKIT_SERVER_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" env:"RANKKIT_SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" env:"RANKKIT_SERVER_SHUTDOWN_TIMEOUT"`
}

// StorageConfig holds the catalog adapter and score log configuration.
// The catalog stores leaderboard names and user accounts; the score log is
// the durable record the in-memory boards are rebuilt from.
type StorageConfig struct {
	Catalog  string         `json:"catalog" env:"RANKKIT_STORAGE_CATALOG"`
	SQL      sqlx.Config    `json:"sql,omitempty"`
	File     FileConfig     `json:"file,omitempty"`
	ScoreLog ScoreLogConfig `json:"score_log,omitempty"`
}

// ScoreLogConfig holds the Redis score log configuration
type ScoreLogConfig struct {
	Enabled bool         `json:"enabled" env:"RANKKIT_STORAGE_SCORE_LOG_ENABLED"`
	Redis   redis.Config `json:"redis,omitempty"`
}

// FileConfig holds JSON file storage configuration
type FileConfig struct {
	Path string `json:"path" env:"RANKKIT_STORAGE_FILE_PATH"`
}

// AuthConfig holds token and password settings
type AuthConfig struct {
	JWTSecret      string        `json:"jwt_secret" env:"RANKKIT_AUTH_JWT_SECRET"`
	TokenTTL       time.Duration `json:"token_ttl" env:"RANKKIT_AUTH_TOKEN_TTL"`
	BcryptCost     int           `json:"bcrypt_cost" env:"RANKKIT_AUTH_BCRYPT_COST"`
	MinPasswordLen int           `json:"min_password_len" env:"RANKKIT_AUTH_MIN_PASSWORD_LEN"`
}

// BoardsConfig holds leaderboard behavior settings
type BoardsConfig struct {
	AutoCreate    bool          `json:"auto_create" env:"RANKKIT_BOARDS_AUTO_CREATE"`
	DefaultLimit  int           `json:"default_limit" env:"RANKKIT_BOARDS_DEFAULT_LIMIT"`
	MaxLimit      int           `json:"max_limit" env:"RANKKIT_BOARDS_MAX_LIMIT"`
	TTL           time.Duration `json:"ttl" env:"RANKKIT_BOARDS_TTL"`
	SweepInterval time.Duration `json:"sweep_interval" env:"RANKKIT_BOARDS_SWEEP_INTERVAL"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string            `json:"level" env:"RANKKIT_LOG_LEVEL"`
	Format     string            `json:"format" env:"RANKKIT_LOG_FORMAT"`
	Output     string            `json:"output" env:"RANKKIT_LOG_OUTPUT"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EnableRateLimit bool            `json:"enable_rate_limit" env:"RANKKIT_SECURITY_RATE_LIMIT_ENABLED"`
	RateLimit       RateLimitConfig `json:"rate_limit,omitempty"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute" env:"RANKKIT_SECURITY_RATE_LIMIT_RPM"`
	BurstSize         int           `json:"burst_size" env:"RANKKIT_SECURITY_RATE_LIMIT_BURST"`
	CleanupInterval   time.Duration `json:"cleanup_interval" env:"RANKKIT_SECURITY_RATE_LIMIT_CLEANUP"`
}

// WebhookConfig holds outbound event delivery configuration
type WebhookConfig struct {
	Endpoints []string `json:"endpoints,omitempty" env:"RANKKIT_WEBHOOK_ENDPOINTS"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load from environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return errors.New("config file must have .json extension")
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(path string) (*Config, error) {
	// Validate the path for security
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	// Open the file safely after validation
	file, err := os.Open(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Environment variables override file values
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		Server: ServerConfig{
			Address:           ":8080",
			PathPrefix:        "/api",
			CORSOrigin:        "*",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Catalog: "memory",
			SQL:     sqlx.DefaultConfig(sqlx.DriverPostgres),
			File: FileConfig{
				Path: "./data/rankkit.json",
			},
			ScoreLog: ScoreLogConfig{
				Enabled: false,
				Redis:   redis.DefaultConfig(),
			},
		},
		Auth: AuthConfig{
			TokenTTL:       time.Hour,
			BcryptCost:     10,
			MinPasswordLen: 8,
		},
		Boards: BoardsConfig{
			AutoCreate:   true,
			DefaultLimit: 10,
			MaxLimit:     100,
			// zero TTL disables eviction of idle boards
			TTL:           0,
			SweepInterval: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			EnableRateLimit: false,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
				BurstSize:         10,
				CleanupInterval:   5 * time.Minute,
			},
		},
	}
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	// Validate environment
	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	// Validate server config
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	// Validate storage config
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	// Validate auth config
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("auth config: %v", err))
	}

	// Validate boards config
	if err := c.Boards.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("boards config: %v", err))
	}

	// Validate logging config
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	// Validate security config
	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	// Create a copy for redaction
	cfg := *c

	// Redact sensitive information
	if cfg.Storage.SQL.DSN != "" {
		cfg.Storage.SQL.DSN = "[REDACTED]"
	}
	if cfg.Storage.ScoreLog.Redis.Password != "" {
		cfg.Storage.ScoreLog.Redis.Password = "[REDACTED]"
	}
	if cfg.Auth.JWTSecret != "" {
		cfg.Auth.JWTSecret = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
