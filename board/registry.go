package board

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"rankkit/core"
)

// Registry owns the process-wide name to board mapping. Creation is guarded
// so concurrent first accesses of the same new name produce exactly one
// board, never two.
type Registry struct {
	mu     sync.RWMutex
	boards map[core.BoardName]*entry
}

type entry struct {
	board   *SkipList
	touched atomic.Int64 // unix nanos of last access
}

func NewRegistry() *Registry {
	return &Registry{boards: map[core.BoardName]*entry{}}
}

// Get returns the board if it exists.
func (r *Registry) Get(name core.BoardName) (*SkipList, bool) {
	r.mu.RLock()
	e, ok := r.boards[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	e.touched.Store(time.Now().UnixNano())
	return e.board, true
}

// GetOrCreate returns the existing board or creates it exactly once.
func (r *Registry) GetOrCreate(name core.BoardName) *SkipList {
	r.mu.RLock()
	e, ok := r.boards[name]
	r.mu.RUnlock()
	if ok {
		e.touched.Store(time.Now().UnixNano())
		return e.board
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// recheck under the write lock
	if e, ok := r.boards[name]; ok {
		e.touched.Store(time.Now().UnixNano())
		return e.board
	}
	e = &entry{board: NewSkipList()}
	e.touched.Store(time.Now().UnixNano())
	r.boards[name] = e
	return e.board
}

// Delete drops the board and reports whether it existed.
func (r *Registry) Delete(name core.BoardName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boards[name]; !ok {
		return false
	}
	delete(r.boards, name)
	return true
}

// Names returns the names of all live boards.
func (r *Registry) Names() []core.BoardName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]core.BoardName, 0, len(r.boards))
	for name := range r.boards {
		names = append(names, name)
	}
	return names
}

// Len returns the number of live boards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boards)
}

// StartSweeper evicts boards idle longer than ttl, checking every interval,
// until ctx is cancelled. Eviction only drops the in-memory structure; a
// board rebuilt from its source of truth comes back on next access. A
// non-positive ttl or interval disables sweeping.
func (r *Registry) StartSweeper(ctx context.Context, ttl, interval time.Duration, onEvict func(core.BoardName)) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				r.sweep(now, ttl, onEvict)
			}
		}
	}()
}

func (r *Registry) sweep(now time.Time, ttl time.Duration, onEvict func(core.BoardName)) {
	cutoff := now.Add(-ttl).UnixNano()
	var stale []core.BoardName
	r.mu.RLock()
	for name, e := range r.boards {
		if e.touched.Load() < cutoff {
			stale = append(stale, name)
		}
	}
	r.mu.RUnlock()
	for _, name := range stale {
		r.mu.Lock()
		e, ok := r.boards[name]
		// an access since the scan rescues the board
		if ok && e.touched.Load() < cutoff {
			delete(r.boards, name)
			r.mu.Unlock()
			if onEvict != nil {
				onEvict(name)
			}
			continue
		}
		r.mu.Unlock()
	}
}
