package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
)

const playerColumns = `id, name, email, profile_picture, games_played, high_score, total_score, last_played, created_at, updated_at`

// Leaderboard order: ties broken by earliest registration, id as the final key
// so pagination stays deterministic.
const highScoreOrder = `high_score DESC, created_at ASC, id ASC`

// PlayerRepository provides PostgreSQL-backed player storage
type PlayerRepository struct {
	db *DB
}

// NewPlayerRepository creates a player repository on the shared pool
func NewPlayerRepository(db *DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.ProfilePicture,
		&p.GamesPlayed,
		&p.HighScore,
		&p.TotalScore,
		&p.LastPlayed,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPlayers(rows pgx.Rows) ([]domain.Player, error) {
	defer rows.Close()
	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new player with a generated identifier
func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO players (id, name, email, profile_picture, games_played, high_score, total_score, last_played, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.pool.Exec(ctx, query,
		p.ID, p.Name, p.Email, p.ProfilePicture,
		p.GamesPlayed, p.HighScore, p.TotalScore,
		p.LastPlayed, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("creating player: %w", err)
	}
	return nil
}

// GetByID retrieves a player by identifier
func (r *PlayerRepository) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrPlayerNotFound
	}

	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	p, err := scanPlayer(r.db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return p, nil
}

// GetByEmail retrieves a player by email (stored lowercase)
func (r *PlayerRepository) GetByEmail(ctx context.Context, email string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE email = $1`
	p, err := scanPlayer(r.db.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting player by email: %w", err)
	}
	return p, nil
}

// Update persists the player's profile fields
func (r *PlayerRepository) Update(ctx context.Context, p *domain.Player) error {
	p.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE players
		SET name = $2, email = $3, profile_picture = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.db.pool.Exec(ctx, query, p.ID, p.Name, p.Email, p.ProfilePicture, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("updating player: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// Delete removes a player; their score history stays in place
func (r *PlayerRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrPlayerNotFound
	}

	result, err := r.db.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// List retrieves all players, newest first
func (r *PlayerRepository) List(ctx context.Context) ([]domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY created_at DESC`
	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return collectPlayers(rows)
}

// ListByHighScore retrieves players ordered by high score descending
func (r *PlayerRepository) ListByHighScore(ctx context.Context, limit, offset int) ([]domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY ` + highScoreOrder + ` LIMIT $1 OFFSET $2`
	rows, err := r.db.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing players by high score: %w", err)
	}
	return collectPlayers(rows)
}

// Count returns the total number of players
func (r *PlayerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting players: %w", err)
	}
	return count, nil
}

// CountWithHigherScore returns the number of players strictly above the given score
func (r *PlayerRepository) CountWithHigherScore(ctx context.Context, score int64) (int64, error) {
	var count int64
	err := r.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM players WHERE high_score > $1`, score).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting players with higher score: %w", err)
	}
	return count, nil
}

// ListAbove retrieves players with a strictly greater high score, best first
func (r *PlayerRepository) ListAbove(ctx context.Context, score int64, limit int) ([]domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE high_score > $1 ORDER BY ` + highScoreOrder + ` LIMIT $2`
	rows, err := r.db.pool.Query(ctx, query, score, limit)
	if err != nil {
		return nil, fmt.Errorf("listing players above: %w", err)
	}
	return collectPlayers(rows)
}

// ListBelow retrieves players with a strictly lesser high score, best first
func (r *PlayerRepository) ListBelow(ctx context.Context, score int64, limit int) ([]domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE high_score < $1 ORDER BY ` + highScoreOrder + ` LIMIT $2`
	rows, err := r.db.pool.Query(ctx, query, score, limit)
	if err != nil {
		return nil, fmt.Errorf("listing players below: %w", err)
	}
	return collectPlayers(rows)
}

// SumGamesPlayed returns the total games played across all players
func (r *PlayerRepository) SumGamesPlayed(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.pool.QueryRow(ctx, `SELECT COALESCE(SUM(games_played), 0) FROM players`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing games played: %w", err)
	}
	return total, nil
}

// ApplyScore folds a submitted score into the player's counters in a single
// atomic update and returns the updated row.
func (r *PlayerRepository) ApplyScore(ctx context.Context, playerID string, score int64, playedAt time.Time) (*domain.Player, error) {
	query := `
		UPDATE players
		SET games_played = games_played + 1,
		    total_score = total_score + $2,
		    high_score = GREATEST(high_score, $2),
		    last_played = $3,
		    updated_at = $3
		WHERE id = $1
		RETURNING ` + playerColumns
	p, err := scanPlayer(r.db.pool.QueryRow(ctx, query, playerID, score, playedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("applying score to player: %w", err)
	}
	return p, nil
}

// SetCounters overwrites the player's aggregate counters, used by reconciliation repair
func (r *PlayerRepository) SetCounters(ctx context.Context, playerID string, gamesPlayed, totalScore, highScore int64) error {
	query := `
		UPDATE players
		SET games_played = $2, total_score = $3, high_score = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.db.pool.Exec(ctx, query, playerID, gamesPlayed, totalScore, highScore, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("setting player counters: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}
