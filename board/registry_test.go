package board

import (
	"sync"
	"testing"
	"time"

	"rankkit/core"
)

func TestRegistryCreateOnce(t *testing.T) {
	r := NewRegistry()
	const workers = 16
	boards := make([]*SkipList, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			boards[i] = r.GetOrCreate("daily")
		}(i)
	}
	wg.Wait()
	for i := 1; i < workers; i++ {
		if boards[i] != boards[0] {
			t.Fatal("concurrent first accesses produced more than one board")
		}
	}
	if r.Len() != 1 {
		t.Fatalf("want 1 board, got %d", r.Len())
	}
}

func TestRegistryGetAndDelete(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("daily"); ok {
		t.Fatal("unexpected board before creation")
	}
	b := r.GetOrCreate("daily")
	if got, ok := r.Get("daily"); !ok || got != b {
		t.Fatal("Get did not return the created board")
	}
	if !r.Delete("daily") {
		t.Fatal("delete should report true for a live board")
	}
	if r.Delete("daily") {
		t.Fatal("second delete should report false")
	}
}

func TestRegistrySweepEvictsIdleBoards(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreate("stale")
	r.GetOrCreate("fresh")

	// age the stale board artificially
	r.mu.Lock()
	r.boards["stale"].touched.Store(time.Now().Add(-time.Hour).UnixNano())
	r.mu.Unlock()

	var evicted []core.BoardName
	r.sweep(time.Now(), 30*time.Minute, func(name core.BoardName) {
		evicted = append(evicted, name)
	})

	if len(evicted) != 1 || evicted[0] != "stale" {
		t.Fatalf("unexpected evictions: %v", evicted)
	}
	if _, ok := r.Get("stale"); ok {
		t.Fatal("stale board survived the sweep")
	}
	if _, ok := r.Get("fresh"); !ok {
		t.Fatal("fresh board was evicted")
	}
}
