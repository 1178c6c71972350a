package service

import (
	"context"

	"rankkit/core"
)

// Catalog is the external leaderboard name registry. Under a
// require-pre-registration policy, boards must exist here before any score
// can be accepted for them.
type Catalog interface {
	CreateLeaderboard(ctx context.Context, name core.BoardName) (core.LeaderboardInfo, error)
	Leaderboards(ctx context.Context) ([]core.LeaderboardInfo, error)
	LeaderboardExists(ctx context.Context, name core.BoardName) (bool, error)
	DeleteLeaderboard(ctx context.Context, name core.BoardName) error
}

// ScoreLog is the durable source of truth for board contents. The in-memory
// ranking structure itself is not durable; after a restart each board is
// rebuilt by replaying its log in insertion-sequence order.
type ScoreLog interface {
	Append(ctx context.Context, board core.BoardName, e core.ScoreEntry) error
	Remove(ctx context.Context, board core.BoardName, member core.Member) error
	Load(ctx context.Context, board core.BoardName) ([]core.ScoreEntry, error)
	Drop(ctx context.Context, board core.BoardName) error
	Boards(ctx context.Context) ([]core.BoardName, error)
}
