package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankkit/core"
)

// memStore is a minimal in-memory UserStore kept local to avoid importing
// the adapters package from here.
type memStore struct {
	users map[string]User
	next  int64
}

func newMemStore() *memStore { return &memStore{users: map[string]User{}} }

func (m *memStore) CreateUser(_ context.Context, name, hash string) (User, error) {
	if _, ok := m.users[name]; ok {
		return User{}, core.ErrUserExists
	}
	m.next++
	u := User{ID: m.next, Name: name, PasswordHash: hash}
	m.users[name] = u
	return u, nil
}

func (m *memStore) UserByName(_ context.Context, name string) (User, bool, error) {
	u, ok := m.users[name]
	return u, ok, nil
}

func newTestHandler(t *testing.T, ttl time.Duration) *Handler {
	t.Helper()
	tokens, err := NewTokenManager("0123456789abcdef0123456789abcdef", ttl)
	require.NoError(t, err)
	// MinCost keeps the bcrypt work factor cheap in tests
	return NewHandler(newMemStore(), tokens, Config{BcryptCost: 4})
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestHandler(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, h.Register(ctx, "alice", "correct-horse"))

	token, err := h.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ident, err := h.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", ident.Name)
	assert.Equal(t, int64(1), ident.UserID)
}

func TestRegisterValidation(t *testing.T) {
	h := newTestHandler(t, time.Hour)
	ctx := context.Background()

	err := h.Register(ctx, "alice", "short")
	assert.ErrorIs(t, err, ErrInvalidRegistration)

	err = h.Register(ctx, "   ", "long-enough-pw")
	assert.ErrorIs(t, err, ErrInvalidRegistration)

	require.NoError(t, h.Register(ctx, "alice", "long-enough-pw"))
	err = h.Register(ctx, "alice", "long-enough-pw")
	assert.ErrorIs(t, err, core.ErrUserExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newTestHandler(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, h.Register(ctx, "alice", "correct-horse"))

	_, err := h.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	_, err = h.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestTokenExpiry(t *testing.T) {
	tokens, err := NewTokenManager("0123456789abcdef0123456789abcdef", time.Millisecond)
	require.NoError(t, err)

	token, err := tokens.Issue(1, "alice")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsTampering(t *testing.T) {
	a, err := NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenManager("abcdef0123456789abcdef0123456789", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue(1, "alice")
	require.NoError(t, err)

	if _, err := b.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token signed with another secret verified: %v", err)
	}
	if _, err := a.Verify(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token verified: %v", err)
	}
}

func TestSecretTooShort(t *testing.T) {
	_, err := NewTokenManager("short", time.Hour)
	assert.Error(t, err)
}
