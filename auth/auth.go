package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rankkit/core"
)

// ErrInvalidRegistration marks registration input the caller can fix.
var ErrInvalidRegistration = errors.New("invalid registration")

// User is a stored credential record.
type User struct {
	ID           int64
	Name         string
	PasswordHash string
}

// UserStore abstracts credential persistence.
type UserStore interface {
	CreateUser(ctx context.Context, name, passwordHash string) (User, error)
	UserByName(ctx context.Context, name string) (User, bool, error)
}

// Config tunes the handler. Zero values fall back to bcrypt.DefaultCost and
// an 8-character password minimum.
type Config struct {
	BcryptCost     int
	MinPasswordLen int
}

// Handler implements registration and login on top of a UserStore and a
// TokenManager.
type Handler struct {
	users  UserStore
	tokens *TokenManager
	cost   int
	minLen int
}

func NewHandler(users UserStore, tokens *TokenManager, cfg Config) *Handler {
	if users == nil || tokens == nil {
		panic("auth.NewHandler requires non-nil store and token manager")
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	minLen := cfg.MinPasswordLen
	if minLen <= 0 {
		minLen = 8
	}
	return &Handler{users: users, tokens: tokens, cost: cost, minLen: minLen}
}

// Register stores a new credential record. The username becomes the member
// identity on every leaderboard, so it is trimmed but otherwise untouched.
func (h *Handler) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidRegistration)
	}
	if len(password) < h.minLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, h.minLen)
	}
	_, exists, err := h.users.UserByName(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if exists {
		slog.Warn("registration attempt for existing user", "username", username)
		return core.ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := h.users.CreateUser(ctx, username, string(hash)); err != nil {
		return err
	}
	slog.Info("registered new user", "username", username)
	return nil
}

// dummyHash is compared against when the user does not exist so a miss costs
// about the same as a wrong password.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Login verifies credentials and returns a signed token.
func (h *Handler) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	user, found, err := h.users.UserByName(ctx, username)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	hash := dummyHash
	if found {
		hash = []byte(user.PasswordHash)
	}
	match := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	if !found || !match {
		slog.Warn("failed login attempt", "username", username)
		return "", core.ErrInvalidCredentials
	}
	token, err := h.tokens.Issue(user.ID, user.Name)
	if err != nil {
		return "", err
	}
	slog.Info("successful login", "username", username)
	return token, nil
}
