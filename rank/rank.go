package rank

import (
	"context"

	mem "rankkit/adapters/memory"
	"rankkit/board"
	"rankkit/event"
	"rankkit/realtime"
	"rankkit/service"
)

// Option configures the leaderboard service builder.
type Option func(*config)

type config struct {
	catalog  service.Catalog
	scorelog service.ScoreLog
	policy   service.Policy
	mode     event.DispatchMode
	hub      *realtime.Hub
}

// WithCatalog sets the leaderboard catalog adapter.
func WithCatalog(c service.Catalog) Option { return func(cfg *config) { cfg.catalog = c } }

// WithScoreLog sets the durable score log used for rehydration.
func WithScoreLog(l service.ScoreLog) Option { return func(cfg *config) { cfg.scorelog = l } }

// WithPolicy sets the request-level policy (auto-create, limits).
func WithPolicy(p service.Policy) Option { return func(cfg *config) { cfg.policy = p } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m event.DispatchMode) Option { return func(cfg *config) { cfg.mode = m } }

// WithRealtime wires a realtime hub to receive all leaderboard events.
func WithRealtime(h *realtime.Hub) Option { return func(cfg *config) { cfg.hub = h } }

// New builds a configured RankService. If not provided, defaults are used:
//   - catalog: in-memory
//   - policy: auto-create with standard limits
//   - dispatch: async
func New(opts ...Option) *service.RankService {
	cfg := &config{mode: event.DispatchAsync, policy: service.Policy{AutoCreate: true}}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.catalog == nil {
		cfg.catalog = mem.New()
	}
	bus := event.NewBus(cfg.mode)
	if cfg.hub != nil {
		// Bridge all primary events to realtime
		bus.Subscribe(event.TypeScoreSubmitted, func(ctx context.Context, e event.Event) { cfg.hub.Broadcast(ctx, e) })
		bus.Subscribe(event.TypePlayerRemoved, func(ctx context.Context, e event.Event) { cfg.hub.Broadcast(ctx, e) })
		bus.Subscribe(event.TypeLeaderboardCreated, func(ctx context.Context, e event.Event) { cfg.hub.Broadcast(ctx, e) })
		bus.Subscribe(event.TypeLeaderboardDeleted, func(ctx context.Context, e event.Event) { cfg.hub.Broadcast(ctx, e) })
	}
	return service.New(board.NewRegistry(), cfg.catalog, cfg.scorelog, bus, cfg.policy)
}
