package memory

import (
	"context"
	"sync"

	"rankkit/auth"
	"rankkit/core"
)

// Store is a concurrent in-memory catalog and user store, used by tests and
// the demo server.
type Store struct {
	mu          sync.Mutex
	boards      map[core.BoardName]core.LeaderboardInfo
	users       map[string]auth.User
	nextBoardID int64
	nextUserID  int64
}

func New() *Store {
	return &Store{
		boards: map[core.BoardName]core.LeaderboardInfo{},
		users:  map[string]auth.User{},
	}
}

func (s *Store) CreateLeaderboard(_ context.Context, name core.BoardName) (core.LeaderboardInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[name]; ok {
		return core.LeaderboardInfo{}, core.ErrLeaderboardExists
	}
	s.nextBoardID++
	info := core.LeaderboardInfo{ID: s.nextBoardID, Name: string(name)}
	s.boards[name] = info
	return info, nil
}

func (s *Store) Leaderboards(_ context.Context) ([]core.LeaderboardInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.LeaderboardInfo, 0, len(s.boards))
	for _, info := range s.boards {
		out = append(out, info)
	}
	return out, nil
}

func (s *Store) LeaderboardExists(_ context.Context, name core.BoardName) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.boards[name]
	return ok, nil
}

func (s *Store) DeleteLeaderboard(_ context.Context, name core.BoardName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[name]; !ok {
		return core.ErrLeaderboardNotFound
	}
	delete(s.boards, name)
	return nil
}

func (s *Store) CreateUser(_ context.Context, name, passwordHash string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[name]; ok {
		return auth.User{}, core.ErrUserExists
	}
	s.nextUserID++
	u := auth.User{ID: s.nextUserID, Name: name, PasswordHash: passwordHash}
	s.users[name] = u
	return u, nil
}

func (s *Store) UserByName(_ context.Context, name string) (auth.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[name]
	return u, ok, nil
}

var _ auth.UserStore = (*Store)(nil)

// catalog surface mirrored here to avoid importing the service package
var _ interface {
	CreateLeaderboard(context.Context, core.BoardName) (core.LeaderboardInfo, error)
	Leaderboards(context.Context) ([]core.LeaderboardInfo, error)
	LeaderboardExists(context.Context, core.BoardName) (bool, error)
	DeleteLeaderboard(context.Context, core.BoardName) error
} = (*Store)(nil)
