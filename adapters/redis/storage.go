package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rankkit/core"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string        `json:"addr"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// ScoreLog persists each board's scores and insertion sequences in Redis so
// the in-memory ranking structures can be rebuilt after a restart.
// Data structure:
// - board:{name}:scores -> hash of member -> score
// - board:{name}:order  -> zset of member scored by insertion sequence
// - boards              -> set of board names that have logged entries
type ScoreLog struct {
	client *redis.Client
}

// New creates a Redis-backed score log with the provided configuration
func New(config Config) (*ScoreLog, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ScoreLog{client: client}, nil
}

// NewWithClient creates a ScoreLog using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client) *ScoreLog {
	return &ScoreLog{client: client}
}

// Close closes the Redis connection
func (l *ScoreLog) Close() error {
	return l.client.Close()
}

const boardsKey = "boards"

func scoresKey(board core.BoardName) string {
	return fmt.Sprintf("board:%s:scores", board)
}

func orderKey(board core.BoardName) string {
	return fmt.Sprintf("board:%s:order", board)
}

// Append records a member's current score and insertion sequence. The
// sequence arrives preserved from the board, so resubmissions overwrite the
// score without disturbing the order set.
func (l *ScoreLog) Append(ctx context.Context, board core.BoardName, e core.ScoreEntry) error {
	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, scoresKey(board), string(e.Member), e.Score)
	pipe.ZAdd(ctx, orderKey(board), redis.Z{Score: float64(e.Seq), Member: string(e.Member)})
	pipe.SAdd(ctx, boardsKey, string(board))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append score: %w", err)
	}
	return nil
}

// Remove drops a member from the board's log.
func (l *ScoreLog) Remove(ctx context.Context, board core.BoardName, member core.Member) error {
	pipe := l.client.TxPipeline()
	pipe.HDel(ctx, scoresKey(board), string(member))
	pipe.ZRem(ctx, orderKey(board), string(member))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// Load returns the board's entries in ascending insertion-sequence order,
// ready to be replayed so tie-breaks come back exactly as recorded.
func (l *ScoreLog) Load(ctx context.Context, board core.BoardName) ([]core.ScoreEntry, error) {
	ordered, err := l.client.ZRangeWithScores(ctx, orderKey(board), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if len(ordered) == 0 {
		return nil, nil
	}
	members := make([]string, len(ordered))
	for i, z := range ordered {
		members[i], _ = z.Member.(string)
	}
	scores, err := l.client.HMGet(ctx, scoresKey(board), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	entries := make([]core.ScoreEntry, 0, len(ordered))
	for i, z := range ordered {
		raw, ok := scores[i].(string)
		if !ok {
			// dangling order entry without a score; skip it
			continue
		}
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		entries = append(entries, core.ScoreEntry{
			Member: core.Member(members[i]),
			Score:  score,
			Seq:    uint64(z.Score),
		})
	}
	return entries, nil
}

// Drop deletes everything logged for the board.
func (l *ScoreLog) Drop(ctx context.Context, board core.BoardName) error {
	pipe := l.client.TxPipeline()
	pipe.Del(ctx, scoresKey(board), orderKey(board))
	pipe.SRem(ctx, boardsKey, string(board))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("drop board: %w", err)
	}
	return nil
}

// Boards lists every board with logged entries.
func (l *ScoreLog) Boards(ctx context.Context) ([]core.BoardName, error) {
	names, err := l.client.SMembers(ctx, boardsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	out := make([]core.BoardName, len(names))
	for i, n := range names {
		out[i] = core.BoardName(n)
	}
	return out, nil
}
