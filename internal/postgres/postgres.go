package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ShobhitTomer/blockblast-backend/internal/config"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open creates a connection pool and verifies connectivity
func Open(ctx context.Context, cfg *config.PostgresConfig, logger *slog.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime.Std()
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime.Std()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &DB{pool: pool, logger: logger}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// RunMigrations executes database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id UUID PRIMARY KEY,
			name VARCHAR(50) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			profile_picture TEXT NOT NULL DEFAULT '',
			games_played BIGINT NOT NULL DEFAULT 0,
			high_score BIGINT NOT NULL DEFAULT 0,
			total_score BIGINT NOT NULL DEFAULT 0,
			last_played TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// No foreign key on player_id: deleting a player keeps their score history.
		`CREATE TABLE IF NOT EXISTS scores (
			id UUID PRIMARY KEY,
			player_id UUID NOT NULL,
			score BIGINT NOT NULL,
			blocks_cleared BIGINT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1,
			game_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_players_high_score ON players(high_score DESC, created_at ASC, id ASC)`,
		`CREATE INDEX IF NOT EXISTS idx_players_created ON players(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_player_created ON scores(player_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_player_score ON scores(player_id, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(score DESC)`,
	}

	for _, migration := range migrations {
		if _, err := db.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	db.logger.Info("database migrations completed")
	return nil
}
