package board

import "rankkit/core"

// Board abstracts one leaderboard's ranked score relation.
type Board interface {
	Upsert(member core.Member, score float64) (core.ScoreEntry, error)
	Remove(member core.Member) bool
	Score(member core.Member) (float64, bool)
	Rank(member core.Member) (int, bool)
	Size() int
	TopN(n int) []core.RankedEntry
	Range(start, end int) []core.RankedEntry
}
