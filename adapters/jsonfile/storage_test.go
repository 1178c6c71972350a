package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rankkit/core"
)

func TestStorePersistAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	store, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	info, err := store.CreateLeaderboard(context.Background(), "daily")
	if err != nil || info.ID == 0 {
		t.Fatalf("create leaderboard: %+v err=%v", info, err)
	}
	if _, err := store.CreateUser(context.Background(), "alice", "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// ensure file written
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s", path)
	}

	// reload
	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	ok, err := reloaded.LeaderboardExists(context.Background(), "daily")
	if err != nil || !ok {
		t.Fatalf("expected leaderboard to survive reload: %v %v", ok, err)
	}
	u, found, err := reloaded.UserByName(context.Background(), "alice")
	if err != nil || !found || u.PasswordHash != "hash" {
		t.Fatalf("expected user to survive reload: %+v found=%v err=%v", u, found, err)
	}

	// ids keep counting after reload
	info2, err := reloaded.CreateLeaderboard(context.Background(), "weekly")
	if err != nil || info2.ID != info.ID+1 {
		t.Fatalf("expected id %d, got %+v err=%v", info.ID+1, info2, err)
	}
}

func TestStoreDuplicatesAndDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	store, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.CreateLeaderboard(ctx, "daily"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateLeaderboard(ctx, "daily"); !errors.Is(err, core.ErrLeaderboardExists) {
		t.Fatalf("duplicate create: %v", err)
	}
	if _, err := store.CreateUser(ctx, "alice", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := store.CreateUser(ctx, "alice", "h"); !errors.Is(err, core.ErrUserExists) {
		t.Fatalf("duplicate user: %v", err)
	}
	if err := store.DeleteLeaderboard(ctx, "daily"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteLeaderboard(ctx, "daily"); !errors.Is(err, core.ErrLeaderboardNotFound) {
		t.Fatalf("delete missing: %v", err)
	}
}
