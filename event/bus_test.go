package event

import (
	"context"
	"testing"
	"time"
)

func TestBusSync(t *testing.T) {
	bus := NewBus(DispatchSync)
	count := 0
	bus.Subscribe(TypeScoreSubmitted, func(ctx context.Context, e Event) { count++ })
	bus.Publish(context.Background(), NewScoreSubmitted("daily", "alice", 100, 1))
	if count != 1 {
		t.Fatalf("want 1 got %d", count)
	}
}

func TestBusAsync(t *testing.T) {
	bus := NewBus(DispatchAsync)
	defer bus.Close()
	ch := make(chan struct{})
	bus.Subscribe(TypeScoreSubmitted, func(ctx context.Context, e Event) { close(ch) })
	bus.Publish(context.Background(), NewScoreSubmitted("daily", "alice", 100, 1))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(DispatchSync)
	count := 0
	unsub := bus.Subscribe(TypePlayerRemoved, func(ctx context.Context, e Event) { count++ })
	bus.Publish(context.Background(), NewPlayerRemoved("daily", "alice"))
	unsub()
	bus.Publish(context.Background(), NewPlayerRemoved("daily", "alice"))
	if count != 1 {
		t.Fatalf("handler ran after unsubscribe: %d", count)
	}
}
