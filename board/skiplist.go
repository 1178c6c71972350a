package board

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"rankkit/core"
)

// An indexed skip list keyed by (score desc, insertion seq asc). Per-level
// span counts give O(log n) rank and range lookups on top of the usual
// O(log n) insert and remove.

const maxLevel = 16
const pFactor = 0.25

type node struct {
	e    core.ScoreEntry
	next [maxLevel]*node
	// span[i] is the number of level-0 steps from this node to next[i].
	span [maxLevel]int
}

// SkipList implements Board for one leaderboard.
type SkipList struct {
	mu       sync.RWMutex
	head     *node
	lvl      int
	length   int
	nextSeq  uint64
	byMember map[core.Member]*node
	rng      *rand.Rand
}

func NewSkipList() *SkipList {
	// Use crypto/rand to generate a secure seed for PCG
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		// Fallback to zero seed if crypto/rand fails (extremely unlikely)
		seed = [16]byte{}
	}
	seed1 := binary.BigEndian.Uint64(seed[:8])
	seed2 := binary.BigEndian.Uint64(seed[8:])

	return &SkipList{
		head:     &node{},
		lvl:      1,
		byMember: map[core.Member]*node{},
		rng:      rand.New(rand.NewPCG(seed1, seed2)),
	}
}

func (s *SkipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && s.rng.Float64() < pFactor {
		lvl++
	}
	return lvl
}

// less orders by score descending, then insertion sequence ascending.
// Sequences are unique, so this is a strict total order.
func less(a, b core.ScoreEntry) bool {
	if a.Score == b.Score {
		return a.Seq < b.Seq
	}
	return a.Score > b.Score
}

// Upsert inserts the member or replaces its score. The insertion sequence is
// assigned at first insertion and kept across updates, so resubmitting never
// moves a member ahead of equal-score members who joined earlier.
func (s *SkipList) Upsert(member core.Member, score float64) (core.ScoreEntry, error) {
	if err := core.ValidateScore(score); err != nil {
		return core.ScoreEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.nextSeq
	if old, ok := s.byMember[member]; ok {
		seq = old.e.Seq
		s.removeLocked(old)
	} else {
		s.nextSeq++
	}
	e := core.ScoreEntry{Member: member, Score: score, Seq: seq}
	s.insertLocked(e)
	return e, nil
}

// Restore reinserts an entry with a known sequence, used when rebuilding a
// board from its source of truth. The internal counter is kept ahead of
// every restored sequence so later first-time inserts stay unique.
func (s *SkipList) Restore(member core.Member, score float64, seq uint64) error {
	if err := core.ValidateScore(score); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byMember[member]; ok {
		s.removeLocked(old)
	}
	if seq >= s.nextSeq {
		s.nextSeq = seq + 1
	}
	s.insertLocked(core.ScoreEntry{Member: member, Score: score, Seq: seq})
	return nil
}

func (s *SkipList) insertLocked(e core.ScoreEntry) {
	var update [maxLevel]*node
	var rank [maxLevel]int
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		if i == s.lvl-1 {
			rank[i] = 0
		} else {
			rank[i] = rank[i+1]
		}
		for cur.next[i] != nil && less(cur.next[i].e, e) {
			rank[i] += cur.span[i]
			cur = cur.next[i]
		}
		update[i] = cur
	}
	lvl := s.randomLevel()
	if lvl > s.lvl {
		for i := s.lvl; i < lvl; i++ {
			rank[i] = 0
			update[i] = s.head
			update[i].span[i] = s.length
		}
		s.lvl = lvl
	}
	n := &node{e: e}
	for i := 0; i < lvl; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n
		n.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = rank[0] - rank[i] + 1
	}
	for i := lvl; i < s.lvl; i++ {
		update[i].span[i]++
	}
	s.length++
	s.byMember[e.Member] = n
}

func (s *SkipList) removeLocked(target *node) {
	var update [maxLevel]*node
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && less(cur.next[i].e, target.e) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	if update[0].next[0] != target {
		return
	}
	for i := 0; i < s.lvl; i++ {
		if update[i].next[i] == target {
			update[i].span[i] += target.span[i] - 1
			update[i].next[i] = target.next[i]
		} else {
			update[i].span[i]--
		}
	}
	delete(s.byMember, target.e.Member)
	s.length--
	for s.lvl > 1 && s.head.next[s.lvl-1] == nil {
		s.head.span[s.lvl-1] = 0
		s.lvl--
	}
}

// Remove deletes the member if present and reports whether it did.
func (s *SkipList) Remove(member core.Member) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byMember[member]
	if !ok {
		return false
	}
	s.removeLocked(n)
	return true
}

// Score returns the member's current score.
func (s *SkipList) Score(member core.Member) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.byMember[member]; ok {
		return n.e.Score, true
	}
	return 0, false
}

// Entry returns the member's full entry including its tie-break sequence.
func (s *SkipList) Entry(member core.Member) (core.ScoreEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.byMember[member]; ok {
		return n.e, true
	}
	return core.ScoreEntry{}, false
}

// Rank returns the member's 1-based position in the descending order.
func (s *SkipList) Rank(member core.Member) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byMember[member]
	if !ok {
		return 0, false
	}
	r := 0
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && !less(n.e, cur.next[i].e) {
			r += cur.span[i]
			cur = cur.next[i]
		}
		if cur == n {
			return r, true
		}
	}
	// n is in byMember, so the level-0 walk must land on it.
	panic("board: rank walk missed a present member")
}

// Size returns the current member count.
func (s *SkipList) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.length
}

// TopN returns the first n entries of the descending order. n may exceed the
// size; n <= 0 yields an empty result.
func (s *SkipList) TopN(n int) []core.RankedEntry {
	if n <= 0 {
		return nil
	}
	return s.Range(0, n-1)
}

// Range returns the descending order between two 0-based inclusive indices.
// Out-of-bounds indices are clamped; an empty window yields an empty result.
func (s *SkipList) Range(start, end int) []core.RankedEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if start < 0 {
		start = 0
	}
	if end >= s.length {
		end = s.length - 1
	}
	if start > end || start >= s.length {
		return nil
	}
	out := make([]core.RankedEntry, 0, end-start+1)
	cur := s.nodeAtRankLocked(start + 1)
	for cur != nil && len(out) < end-start+1 {
		out = append(out, core.RankedEntry{Rank: start + 1 + len(out), Member: cur.e.Member, Score: cur.e.Score})
		cur = cur.next[0]
	}
	return out
}

// nodeAtRankLocked finds the node at a 1-based rank by walking spans.
func (s *SkipList) nodeAtRankLocked(rank int) *node {
	traversed := 0
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && traversed+cur.span[i] <= rank {
			traversed += cur.span[i]
			cur = cur.next[i]
		}
		if traversed == rank {
			return cur
		}
	}
	return nil
}

// checkInvariants walks level 0 verifying strict key order and length
// bookkeeping. A violation means the structure is corrupted and every later
// rank answer would lie, so it panics instead of limping on. Test hook.
func (s *SkipList) checkInvariants() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	prev := s.head
	for cur := s.head.next[0]; cur != nil; cur = cur.next[0] {
		if prev != s.head && !less(prev.e, cur.e) {
			panic("board: order invariant violated")
		}
		if s.byMember[cur.e.Member] != cur {
			panic("board: member index out of sync")
		}
		count++
		prev = cur
	}
	if count != s.length || count != len(s.byMember) {
		panic("board: length invariant violated")
	}
}

var _ Board = (*SkipList)(nil)
