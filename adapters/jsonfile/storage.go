package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"rankkit/auth"
	"rankkit/core"
)

// Store persists the leaderboard catalog and user accounts to a single JSON
// file. Suitable for demos and small deployments.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache for speed
	data fileData
}

type fileData struct {
	Boards      map[string]core.LeaderboardInfo `json:"leaderboards"`
	Users       map[string]auth.User            `json:"users"`
	NextBoardID int64                           `json:"next_leaderboard_id"`
	NextUserID  int64                           `json:"next_user_id"`
}

func New(path string) (*Store, error) {
	s := &Store{path: path, data: fileData{
		Boards: map[string]core.LeaderboardInfo{},
		Users:  map[string]auth.User{},
	}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var raw fileData
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Boards == nil {
		raw.Boards = map[string]core.LeaderboardInfo{}
	}
	if raw.Users == nil {
		raw.Users = map[string]auth.User{}
	}
	s.data = raw
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) CreateLeaderboard(_ context.Context, name core.BoardName) (core.LeaderboardInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Boards[string(name)]; ok {
		return core.LeaderboardInfo{}, core.ErrLeaderboardExists
	}
	s.data.NextBoardID++
	info := core.LeaderboardInfo{ID: s.data.NextBoardID, Name: string(name)}
	s.data.Boards[string(name)] = info
	if err := s.persist(); err != nil {
		delete(s.data.Boards, string(name))
		return core.LeaderboardInfo{}, err
	}
	return info, nil
}

func (s *Store) Leaderboards(_ context.Context) ([]core.LeaderboardInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.LeaderboardInfo, 0, len(s.data.Boards))
	for _, info := range s.data.Boards {
		out = append(out, info)
	}
	return out, nil
}

func (s *Store) LeaderboardExists(_ context.Context, name core.BoardName) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data.Boards[string(name)]
	return ok, nil
}

func (s *Store) DeleteLeaderboard(_ context.Context, name core.BoardName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.data.Boards[string(name)]
	if !ok {
		return core.ErrLeaderboardNotFound
	}
	delete(s.data.Boards, string(name))
	if err := s.persist(); err != nil {
		s.data.Boards[string(name)] = info
		return err
	}
	return nil
}

func (s *Store) CreateUser(_ context.Context, name, passwordHash string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Users[name]; ok {
		return auth.User{}, core.ErrUserExists
	}
	s.data.NextUserID++
	u := auth.User{ID: s.data.NextUserID, Name: name, PasswordHash: passwordHash}
	s.data.Users[name] = u
	if err := s.persist(); err != nil {
		delete(s.data.Users, name)
		return auth.User{}, err
	}
	return u, nil
}

func (s *Store) UserByName(_ context.Context, name string) (auth.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.Users[name]
	return u, ok, nil
}

var _ auth.UserStore = (*Store)(nil)
