package memory

import (
	"context"
	"errors"
	"testing"

	"rankkit/core"
)

func TestCatalogLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	info, err := s.CreateLeaderboard(ctx, "daily")
	if err != nil || info.Name != "daily" || info.ID == 0 {
		t.Fatalf("create: %+v err=%v", info, err)
	}
	if _, err := s.CreateLeaderboard(ctx, "daily"); !errors.Is(err, core.ErrLeaderboardExists) {
		t.Fatalf("duplicate create: %v", err)
	}
	ok, err := s.LeaderboardExists(ctx, "daily")
	if err != nil || !ok {
		t.Fatalf("exists: %v %v", ok, err)
	}
	all, err := s.Leaderboards(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("list: %v err=%v", all, err)
	}
	if err := s.DeleteLeaderboard(ctx, "daily"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteLeaderboard(ctx, "daily"); !errors.Is(err, core.ErrLeaderboardNotFound) {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestUserStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "hash")
	if err != nil || u.ID == 0 {
		t.Fatalf("create user: %+v err=%v", u, err)
	}
	if _, err := s.CreateUser(ctx, "alice", "hash"); !errors.Is(err, core.ErrUserExists) {
		t.Fatalf("duplicate user: %v", err)
	}
	got, found, err := s.UserByName(ctx, "alice")
	if err != nil || !found || got.PasswordHash != "hash" {
		t.Fatalf("lookup: %+v found=%v err=%v", got, found, err)
	}
	if _, found, _ := s.UserByName(ctx, "bob"); found {
		t.Fatal("unexpected user")
	}
}
