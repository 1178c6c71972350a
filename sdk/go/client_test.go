package sdk

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	mem "rankkit/adapters/memory"
	"rankkit/api/httpapi"
	"rankkit/auth"
	"rankkit/board"
	"rankkit/event"
	"rankkit/realtime"
	"rankkit/service"
)

// newTestServer runs the real API stack so the SDK is exercised end to end.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := mem.New()
	bus := event.NewBus(event.DispatchSync)
	hub := realtime.NewHub()
	bus.Subscribe(event.TypeScoreSubmitted, func(ctx context.Context, e event.Event) {
		hub.Broadcast(ctx, e)
	})
	svc := service.New(board.NewRegistry(), store, nil, bus, service.Policy{AutoCreate: true})
	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	authn := auth.NewHandler(store, tokens, auth.Config{BcryptCost: 4})
	handler := httpapi.NewMux(svc, authn, tokens, hub, httpapi.Options{PathPrefix: "/api"})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FullFlow(t *testing.T) {
	srv := newTestServer(t)

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	if err := client.Register(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := client.Login(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if client.Token() == "" {
		t.Fatal("expected token after login")
	}

	res, err := client.SubmitScore(ctx, "daily", 100)
	if err != nil {
		t.Fatalf("submit score: %v", err)
	}
	if res.Rank != 1 || res.Username != "alice" {
		t.Fatalf("unexpected submit result: %+v", res)
	}

	top, err := client.Top(ctx, "daily", 10)
	if err != nil || len(top) != 1 {
		t.Fatalf("top: %+v err=%v", top, err)
	}

	page, err := client.Page(ctx, "daily", 0, 20)
	if err != nil || page.TotalPlayers != 1 {
		t.Fatalf("page: %+v err=%v", page, err)
	}

	standing, err := client.Me(ctx, "daily")
	if err != nil || standing.Rank != 1 {
		t.Fatalf("me: %+v err=%v", standing, err)
	}

	removed, err := client.RemoveMe(ctx, "daily")
	if err != nil || !removed {
		t.Fatalf("remove me: removed=%v err=%v", removed, err)
	}

	health, err := client.Health(ctx)
	if err != nil || health.Status != "healthy" {
		t.Fatalf("health: %+v err=%v", health, err)
	}
}

func TestClient_Catalog(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	info, err := client.CreateLeaderboard(ctx, "weekly")
	if err != nil || info.Name != "weekly" {
		t.Fatalf("create: %+v err=%v", info, err)
	}

	all, err := client.ListLeaderboards(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("list: %+v err=%v", all, err)
	}

	if err := client.DeleteLeaderboard(ctx, "weekly"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var apiErr *APIError
	err = client.DeleteLeaderboard(ctx, "weekly")
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
}

func TestClient_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.SubmitScore(context.Background(), "daily", 10); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestClient_SubscribeEvents(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := client.SubscribeEvents(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	// give the ws handler time to subscribe to the hub
	time.Sleep(20 * time.Millisecond)

	if err := client.Register(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := client.Login(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := client.SubmitScore(ctx, "daily", 42); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Type != "score_submitted" || evt.Username != "alice" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}
