package sqlx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"rankkit/auth"
	"rankkit/core"
)

// Driver selects the SQL dialect used for schema creation and id retrieval.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds SQL connection configuration
type Config struct {
	Driver          Driver        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible defaults for SQL configuration
func DefaultConfig(driver Driver) Config {
	dsn := "postgres://localhost/rankkit?sslmode=disable"
	if driver == DriverMySQL {
		dsn = "root@tcp(localhost:3306)/rankkit?parseTime=true"
	}
	return Config{
		Driver:          driver,
		DSN:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store is a SQL-backed catalog and user store built on sqlx. It supports
// PostgreSQL and MySQL.
type Store struct {
	db     *sqlx.DB
	driver Driver
}

// New opens a database connection with the provided configuration
func New(config Config) (*Store, error) {
	db, err := sqlx.Open(string(config.Driver), config.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, driver: config.Driver}, nil
}

// NewWithDB wraps an existing sqlx handle (useful for testing)
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	var stmts []string
	switch s.driver {
	case DriverMySQL:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				username VARCHAR(255) NOT NULL UNIQUE,
				password_hash VARCHAR(255) NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS leaderboards (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL UNIQUE,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		}
	default:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS leaderboards (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		}
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) CreateLeaderboard(ctx context.Context, name core.BoardName) (core.LeaderboardInfo, error) {
	if s.driver == DriverPostgres {
		var id int64
		query := s.db.Rebind(`INSERT INTO leaderboards (name) VALUES (?) ON CONFLICT (name) DO NOTHING RETURNING id`)
		err := s.db.QueryRowxContext(ctx, query, string(name)).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return core.LeaderboardInfo{}, core.ErrLeaderboardExists
		}
		if err != nil {
			return core.LeaderboardInfo{}, fmt.Errorf("create leaderboard: %w", err)
		}
		return core.LeaderboardInfo{ID: id, Name: string(name)}, nil
	}

	query := s.db.Rebind(`INSERT INTO leaderboards (name) VALUES (?)`)
	res, err := s.db.ExecContext(ctx, query, string(name))
	if err != nil {
		// MySQL reports duplicates as an insert error; confirm before mapping
		if exists, checkErr := s.LeaderboardExists(ctx, name); checkErr == nil && exists {
			return core.LeaderboardInfo{}, core.ErrLeaderboardExists
		}
		return core.LeaderboardInfo{}, fmt.Errorf("create leaderboard: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.LeaderboardInfo{}, fmt.Errorf("create leaderboard: %w", err)
	}
	return core.LeaderboardInfo{ID: id, Name: string(name)}, nil
}

func (s *Store) Leaderboards(ctx context.Context) ([]core.LeaderboardInfo, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT id, name FROM leaderboards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list leaderboards: %w", err)
	}
	defer rows.Close()

	var out []core.LeaderboardInfo
	for rows.Next() {
		var info core.LeaderboardInfo
		if err := rows.Scan(&info.ID, &info.Name); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *Store) LeaderboardExists(ctx context.Context, name core.BoardName) (bool, error) {
	var exists bool
	query := s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM leaderboards WHERE name = ?)`)
	if err := s.db.QueryRowxContext(ctx, query, string(name)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check leaderboard: %w", err)
	}
	return exists, nil
}

func (s *Store) DeleteLeaderboard(ctx context.Context, name core.BoardName) error {
	query := s.db.Rebind(`DELETE FROM leaderboards WHERE name = ?`)
	res, err := s.db.ExecContext(ctx, query, string(name))
	if err != nil {
		return fmt.Errorf("delete leaderboard: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete leaderboard: %w", err)
	}
	if n == 0 {
		return core.ErrLeaderboardNotFound
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, name, passwordHash string) (auth.User, error) {
	if s.driver == DriverPostgres {
		var id int64
		query := s.db.Rebind(`INSERT INTO users (username, password_hash) VALUES (?, ?) ON CONFLICT (username) DO NOTHING RETURNING id`)
		err := s.db.QueryRowxContext(ctx, query, name, passwordHash).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, core.ErrUserExists
		}
		if err != nil {
			return auth.User{}, fmt.Errorf("create user: %w", err)
		}
		return auth.User{ID: id, Name: name, PasswordHash: passwordHash}, nil
	}

	query := s.db.Rebind(`INSERT INTO users (username, password_hash) VALUES (?, ?)`)
	res, err := s.db.ExecContext(ctx, query, name, passwordHash)
	if err != nil {
		if _, found, checkErr := s.UserByName(ctx, name); checkErr == nil && found {
			return auth.User{}, core.ErrUserExists
		}
		return auth.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return auth.User{}, fmt.Errorf("create user: %w", err)
	}
	return auth.User{ID: id, Name: name, PasswordHash: passwordHash}, nil
}

func (s *Store) UserByName(ctx context.Context, name string) (auth.User, bool, error) {
	var u auth.User
	query := s.db.Rebind(`SELECT id, username, password_hash FROM users WHERE username = ?`)
	err := s.db.QueryRowxContext(ctx, query, name).Scan(&u.ID, &u.Name, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, fmt.Errorf("lookup user: %w", err)
	}
	return u, true, nil
}

var _ auth.UserStore = (*Store)(nil)
