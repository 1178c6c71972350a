package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	var errs []string

	if s.Address == "" {
		errs = append(errs, "address cannot be empty")
	}

	if s.ReadTimeout <= 0 {
		errs = append(errs, "read_timeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		errs = append(errs, "write_timeout must be positive")
	}

	if s.IdleTimeout <= 0 {
		errs = append(errs, "idle_timeout must be positive")
	}

	if s.ReadHeaderTimeout <= 0 {
		errs = append(errs, "read_header_timeout must be positive")
	}

	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "shutdown_timeout must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates storage configuration
func (s *StorageConfig) Validate() error {
	var errs []string

	validCatalogs := []string{"memory", "sql", "file"}
	isValidCatalog := false
	for _, catalog := range validCatalogs {
		if s.Catalog == catalog {
			isValidCatalog = true
			break
		}
	}

	if !isValidCatalog {
		errs = append(errs, fmt.Sprintf("catalog must be one of: %s", strings.Join(validCatalogs, ", ")))
	}

	// Validate adapter-specific configs
	switch s.Catalog {
	case "file":
		if err := s.File.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("file config: %v", err))
		}
	case "sql":
		if s.SQL.DSN == "" {
			errs = append(errs, "sql config: dsn cannot be empty")
		}
	}

	if s.ScoreLog.Enabled && s.ScoreLog.Redis.Addr == "" {
		errs = append(errs, "score_log config: redis addr cannot be empty when the score log is enabled")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates file storage configuration
func (f *FileConfig) Validate() error {
	if f.Path == "" {
		return errors.New("path cannot be empty")
	}
	return nil
}

// Validate validates auth configuration. An unset JWT secret passes here so
// profiles can load without env vars; the token manager rejects it at startup.
func (a *AuthConfig) Validate() error {
	var errs []string

	if a.JWTSecret != "" && len(a.JWTSecret) < 32 {
		errs = append(errs, "jwt_secret must be at least 32 bytes")
	}

	if a.TokenTTL <= 0 {
		errs = append(errs, "token_ttl must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates leaderboard behavior configuration
func (b *BoardsConfig) Validate() error {
	var errs []string

	if b.DefaultLimit <= 0 {
		errs = append(errs, "default_limit must be positive")
	}

	if b.MaxLimit <= 0 {
		errs = append(errs, "max_limit must be positive")
	}

	if b.DefaultLimit > 0 && b.MaxLimit > 0 && b.DefaultLimit > b.MaxLimit {
		errs = append(errs, "default_limit cannot exceed max_limit")
	}

	if b.TTL > 0 && b.SweepInterval <= 0 {
		errs = append(errs, "sweep_interval must be positive when ttl is set")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	var errs []string

	validLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if l.Level == level {
			isValidLevel = true
			break
		}
	}

	if !isValidLevel {
		errs = append(errs, fmt.Sprintf("level must be one of: %s", strings.Join(validLevels, ", ")))
	}

	validFormats := []string{"json", "text"}
	isValidFormat := false
	for _, format := range validFormats {
		if l.Format == format {
			isValidFormat = true
			break
		}
	}

	if !isValidFormat {
		errs = append(errs, fmt.Sprintf("format must be one of: %s", strings.Join(validFormats, ", ")))
	}

	validOutputs := []string{"stdout", "stderr"}
	isValidOutput := false
	for _, output := range validOutputs {
		if l.Output == output {
			isValidOutput = true
			break
		}
	}

	if !isValidOutput {
		errs = append(errs, fmt.Sprintf("output must be one of: %s", strings.Join(validOutputs, ", ")))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates security settings.
func (s SecurityConfig) Validate() error {
	var errs []string
	if s.EnableRateLimit {
		if s.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, "rate_limit.requests_per_minute must be > 0 when rate limiting is enabled")
		}
		if s.RateLimit.BurstSize <= 0 {
			errs = append(errs, "rate_limit.burst_size must be > 0 when rate limiting is enabled")
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
