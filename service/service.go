package service

import (
	"context"
	"fmt"
	"log/slog"

	"rankkit/board"
	"rankkit/core"
	"rankkit/event"
)

// Policy is the request-level policy the service adds on top of the boards.
type Policy struct {
	// AutoCreate lets a first score submission create its leaderboard. When
	// false, boards must be pre-registered in the catalog.
	AutoCreate bool
	// DefaultLimit applies when a caller asks for a top listing without a
	// limit. Zero means 10.
	DefaultLimit int
	// MaxLimit caps any single response. Zero means 100.
	MaxLimit int
}

func (p Policy) withDefaults() Policy {
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = 10
	}
	if p.MaxLimit <= 0 {
		p.MaxLimit = 100
	}
	return p
}

// SubmitResult reports the member's standing right after a submission.
type SubmitResult struct {
	Member core.Member `json:"username"`
	Score  float64     `json:"score"`
	Rank   int         `json:"rank"`
}

// Page is one window of a leaderboard plus the total so callers can compute
// page counts.
type Page struct {
	Board        core.BoardName     `json:"leaderboardName"`
	Entries      []core.RankedEntry `json:"scores"`
	Start        int                `json:"start"`
	Limit        int                `json:"limit"`
	TotalPlayers int                `json:"totalPlayers"`
}

// PlayerStanding is one member's own view of a leaderboard.
type PlayerStanding struct {
	Member       core.Member `json:"username"`
	Score        float64     `json:"score"`
	Rank         int         `json:"rank"`
	TotalPlayers int         `json:"totalPlayers"`
}

// RankService translates API requests into board operations and adds the
// request-level policy: score validation, limit clamping, board creation
// policy, catalog CRUD, and event publication.
type RankService struct {
	boards  *board.Registry
	catalog Catalog
	log     ScoreLog // optional
	bus     *event.Bus
	policy  Policy
}

// New wires the service. Registry, catalog, and bus are required; scorelog
// may be nil, in which case boards live only in memory.
func New(boards *board.Registry, catalog Catalog, scorelog ScoreLog, bus *event.Bus, policy Policy) *RankService {
	if boards == nil || catalog == nil || bus == nil {
		panic("service.New requires non-nil registry, catalog, and bus")
	}
	return &RankService{
		boards:  boards,
		catalog: catalog,
		log:     scorelog,
		bus:     bus,
		policy:  policy.withDefaults(),
	}
}

// Boards exposes the registry for lifecycle wiring (sweeper, rehydration).
func (s *RankService) Boards() *board.Registry { return s.boards }

// Close stops the event bus workers.
func (s *RankService) Close() { s.bus.Close() }

// SubmitScore validates and records a score, then returns the member's fresh
// rank. Negative and non-finite scores are rejected, never clamped.
func (s *RankService) SubmitScore(ctx context.Context, name core.BoardName, member core.Member, score float64) (SubmitResult, error) {
	member, err := core.NormalizeMember(member)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := core.ValidateScore(score); err != nil {
		return SubmitResult{}, err
	}
	if score < 0 {
		return SubmitResult{}, fmt.Errorf("%w: score must be non-negative", core.ErrInvalidScore)
	}
	b, err := s.boardFor(ctx, name)
	if err != nil {
		return SubmitResult{}, err
	}
	e, err := b.Upsert(member, score)
	if err != nil {
		return SubmitResult{}, err
	}
	rank, _ := b.Rank(member)
	if s.log != nil {
		if logErr := s.log.Append(ctx, name, e); logErr != nil {
			slog.Warn("score log append failed", "leaderboard", name, "username", member, "error", logErr)
		}
	}
	s.bus.Publish(ctx, event.NewScoreSubmitted(name, member, score, rank))
	slog.Info("score submitted", "leaderboard", name, "username", member, "score", score, "rank", rank)
	return SubmitResult{Member: member, Score: score, Rank: rank}, nil
}

// GetTop returns the first entries of the board's descending order. A
// non-positive limit falls back to the default; large limits are clamped.
func (s *RankService) GetTop(ctx context.Context, name core.BoardName, limit int) ([]core.RankedEntry, error) {
	if limit <= 0 {
		limit = s.policy.DefaultLimit
	}
	if limit > s.policy.MaxLimit {
		limit = s.policy.MaxLimit
	}
	b, err := s.boardFor(ctx, name)
	if err != nil {
		return nil, err
	}
	return b.TopN(limit), nil
}

// GetPage returns one pagination window plus the total member count.
func (s *RankService) GetPage(ctx context.Context, name core.BoardName, start, limit int) (Page, error) {
	if start < 0 || limit <= 0 {
		return Page{}, fmt.Errorf("%w: start %d, limit %d", core.ErrInvalidRange, start, limit)
	}
	if limit > s.policy.MaxLimit {
		limit = s.policy.MaxLimit
	}
	b, err := s.boardFor(ctx, name)
	if err != nil {
		return Page{}, err
	}
	end := start + limit - 1
	return Page{
		Board:        name,
		Entries:      b.Range(start, end),
		Start:        start,
		Limit:        limit,
		TotalPlayers: b.Size(),
	}, nil
}

// GetPlayer returns the member's own score, rank, and the board total.
func (s *RankService) GetPlayer(ctx context.Context, name core.BoardName, member core.Member) (PlayerStanding, error) {
	member, err := core.NormalizeMember(member)
	if err != nil {
		return PlayerStanding{}, err
	}
	b, err := s.boardFor(ctx, name)
	if err != nil {
		return PlayerStanding{}, err
	}
	score, ok := b.Score(member)
	if !ok {
		return PlayerStanding{}, core.ErrMemberNotFound
	}
	rank, _ := b.Rank(member)
	return PlayerStanding{Member: member, Score: score, Rank: rank, TotalPlayers: b.Size()}, nil
}

// RemovePlayer drops the member's entry and reports whether it existed.
func (s *RankService) RemovePlayer(ctx context.Context, name core.BoardName, member core.Member) (bool, error) {
	member, err := core.NormalizeMember(member)
	if err != nil {
		return false, err
	}
	b, err := s.boardFor(ctx, name)
	if err != nil {
		return false, err
	}
	removed := b.Remove(member)
	if removed {
		if s.log != nil {
			if logErr := s.log.Remove(ctx, name, member); logErr != nil {
				slog.Warn("score log remove failed", "leaderboard", name, "username", member, "error", logErr)
			}
		}
		s.bus.Publish(ctx, event.NewPlayerRemoved(name, member))
		slog.Info("player removed", "leaderboard", name, "username", member)
	}
	return removed, nil
}

// CreateLeaderboard registers the name in the catalog and materializes an
// empty board.
func (s *RankService) CreateLeaderboard(ctx context.Context, name core.BoardName) (core.LeaderboardInfo, error) {
	if err := core.ValidateBoardName(name); err != nil {
		return core.LeaderboardInfo{}, err
	}
	info, err := s.catalog.CreateLeaderboard(ctx, name)
	if err != nil {
		return core.LeaderboardInfo{}, err
	}
	s.boards.GetOrCreate(name)
	s.bus.Publish(ctx, event.NewLeaderboardCreated(name))
	slog.Info("leaderboard created", "leaderboard", name)
	return info, nil
}

// ListLeaderboards returns the catalog contents.
func (s *RankService) ListLeaderboards(ctx context.Context) ([]core.LeaderboardInfo, error) {
	return s.catalog.Leaderboards(ctx)
}

// DeleteLeaderboard removes the name from the catalog and drops the board
// and its log.
func (s *RankService) DeleteLeaderboard(ctx context.Context, name core.BoardName) error {
	if err := core.ValidateBoardName(name); err != nil {
		return err
	}
	if err := s.catalog.DeleteLeaderboard(ctx, name); err != nil {
		return err
	}
	s.boards.Delete(name)
	if s.log != nil {
		if err := s.log.Drop(ctx, name); err != nil {
			slog.Warn("score log drop failed", "leaderboard", name, "error", err)
		}
	}
	s.bus.Publish(ctx, event.NewLeaderboardDeleted(name))
	slog.Info("leaderboard deleted", "leaderboard", name)
	return nil
}

// Rehydrate rebuilds in-memory boards from the score log. Entries replay in
// insertion-sequence order so tie-breaks survive a restart.
func (s *RankService) Rehydrate(ctx context.Context) error {
	if s.log == nil {
		return nil
	}
	names, err := s.log.Boards(ctx)
	if err != nil {
		return fmt.Errorf("list logged boards: %w", err)
	}
	for _, name := range names {
		entries, err := s.log.Load(ctx, name)
		if err != nil {
			return fmt.Errorf("load board %s: %w", name, err)
		}
		b := s.boards.GetOrCreate(name)
		for _, e := range entries {
			if err := b.Restore(e.Member, e.Score, e.Seq); err != nil {
				return fmt.Errorf("restore %s/%s: %w", name, e.Member, err)
			}
		}
		slog.Info("rehydrated leaderboard", "leaderboard", name, "players", len(entries))
	}
	return nil
}

// boardFor resolves a name to its board. Under auto-create the board is
// materialized lazily; an empty board is a valid, queryable object. Under
// pre-registration an unknown name is an error.
func (s *RankService) boardFor(ctx context.Context, name core.BoardName) (*board.SkipList, error) {
	if err := core.ValidateBoardName(name); err != nil {
		return nil, err
	}
	if b, ok := s.boards.Get(name); ok {
		return b, nil
	}
	if !s.policy.AutoCreate {
		ok, err := s.catalog.LeaderboardExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("catalog lookup: %w", err)
		}
		if !ok {
			return nil, core.ErrLeaderboardNotFound
		}
	}
	return s.boards.GetOrCreate(name), nil
}
