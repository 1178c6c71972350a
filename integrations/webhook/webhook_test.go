package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"rankkit/event"
)

func TestSink_OnEventPostsToEndpoints(t *testing.T) {
	var hits int32
	var lastBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		b, _ := io.ReadAll(r.Body)
		lastBody.Store(b)
		_ = r.Body.Close()
	}))
	defer srv.Close()

	sink := New([]string{srv.URL})
	sink.OnEvent(event.NewScoreSubmitted("daily", "alice", 100, 1))

	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", hits)
	}
	var got event.Event
	if err := json.Unmarshal(lastBody.Load().([]byte), &got); err != nil {
		t.Fatalf("decode posted event: %v", err)
	}
	if got.Type != event.TypeScoreSubmitted || got.Member != "alice" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestSink_NoEndpointsIsNoop(t *testing.T) {
	sink := New(nil)
	sink.OnEvent(event.NewLeaderboardCreated("daily"))
}
