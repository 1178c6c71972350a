package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Member is the trusted identity string for one participant. It is produced
// by the auth layer after token verification and treated as an opaque value
// everywhere below it; the store never parses structure out of it.
type Member string

// BoardName identifies one leaderboard.
type BoardName string

// ScoreEntry is a member's current score plus the insertion sequence used as
// the tie-break key. Seq is assigned once at first insertion and survives
// later score updates.
type ScoreEntry struct {
	Member Member  `json:"username"`
	Score  float64 `json:"score"`
	Seq    uint64  `json:"seq"`
}

// RankedEntry is one row of a rank query result.
type RankedEntry struct {
	Rank   int     `json:"rank"`
	Member Member  `json:"username"`
	Score  float64 `json:"score"`
}

// LeaderboardInfo describes a leaderboard registered in the catalog.
type LeaderboardInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NormalizeMember trims surrounding whitespace and rejects empty identities.
// The identity itself is never rewritten; two members differing in case are
// two members.
func NormalizeMember(m Member) (Member, error) {
	s := strings.TrimSpace(string(m))
	if s == "" {
		return "", errors.New("empty member identity")
	}
	return Member(s), nil
}

const (
	minBoardNameLen = 3
	maxBoardNameLen = 100
)

// ValidateBoardName enforces catalog naming rules: 3..100 characters of
// letters, digits, dash and underscore.
func ValidateBoardName(n BoardName) error {
	s := strings.TrimSpace(string(n))
	if len(s) < minBoardNameLen || len(s) > maxBoardNameLen {
		return fmt.Errorf("%w: name must be between %d and %d characters", ErrInvalidName, minBoardNameLen, maxBoardNameLen)
	}
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return fmt.Errorf("%w: name contains %q", ErrInvalidName, r)
	}
	return nil
}

// ValidateScore rejects NaN and infinities. Negative scores are a service
// policy, not a store concern, and are checked one layer up.
func ValidateScore(s float64) error {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return fmt.Errorf("%w: score must be finite", ErrInvalidScore)
	}
	return nil
}
