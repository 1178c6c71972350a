package event

import (
	"time"

	"rankkit/core"
)

// Type names a leaderboard lifecycle event.
type Type string

const (
	TypeScoreSubmitted     Type = "score_submitted"
	TypePlayerRemoved      Type = "player_removed"
	TypeLeaderboardCreated Type = "leaderboard_created"
	TypeLeaderboardDeleted Type = "leaderboard_deleted"
)

// Event describes one leaderboard state change.
type Event struct {
	Type   Type           `json:"type"`
	Board  core.BoardName `json:"leaderboard"`
	Member core.Member    `json:"username,omitempty"`
	Score  float64        `json:"score,omitempty"`
	Rank   int            `json:"rank,omitempty"`
	At     time.Time      `json:"at"`
}

// NewScoreSubmitted builds a score_submitted event.
func NewScoreSubmitted(board core.BoardName, member core.Member, score float64, rank int) Event {
	return Event{Type: TypeScoreSubmitted, Board: board, Member: member, Score: score, Rank: rank, At: time.Now().UTC()}
}

// NewPlayerRemoved builds a player_removed event.
func NewPlayerRemoved(board core.BoardName, member core.Member) Event {
	return Event{Type: TypePlayerRemoved, Board: board, Member: member, At: time.Now().UTC()}
}

// NewLeaderboardCreated builds a leaderboard_created event.
func NewLeaderboardCreated(board core.BoardName) Event {
	return Event{Type: TypeLeaderboardCreated, Board: board, At: time.Now().UTC()}
}

// NewLeaderboardDeleted builds a leaderboard_deleted event.
func NewLeaderboardDeleted(board core.BoardName) Event {
	return Event{Type: TypeLeaderboardDeleted, Board: board, At: time.Now().UTC()}
}
