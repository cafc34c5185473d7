package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
)

const scoreColumns = `id, player_id, score, blocks_cleared, level, game_duration, created_at`

// ScoreOrder selects how a player's scores are sorted
type ScoreOrder string

const (
	// ScoreOrderRecent sorts by submission time, newest first
	ScoreOrderRecent ScoreOrder = "recent"
	// ScoreOrderBest sorts by score value, highest first
	ScoreOrderBest ScoreOrder = "best"
)

// ScoreRepository provides PostgreSQL-backed score storage
type ScoreRepository struct {
	db *DB
}

// NewScoreRepository creates a score repository on the shared pool
func NewScoreRepository(db *DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Create inserts a new score record with a generated identifier
func (r *ScoreRepository) Create(ctx context.Context, s *domain.Score) error {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO scores (id, player_id, score, blocks_cleared, level, game_duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.pool.Exec(ctx, query,
		s.ID, s.PlayerID, s.Score, s.BlocksCleared, s.Level, s.GameDuration, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating score: %w", err)
	}
	return nil
}

// ListByPlayer retrieves a player's scores in the given order
func (r *ScoreRepository) ListByPlayer(ctx context.Context, playerID string, order ScoreOrder, limit int) ([]domain.Score, error) {
	if _, err := uuid.Parse(playerID); err != nil {
		return nil, nil
	}

	orderBy := `created_at DESC`
	if order == ScoreOrderBest {
		orderBy = `score DESC, created_at DESC`
	}

	query := `SELECT ` + scoreColumns + ` FROM scores WHERE player_id = $1 ORDER BY ` + orderBy + ` LIMIT $2`
	rows, err := r.db.pool.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.Score
	for rows.Next() {
		var s domain.Score
		err := rows.Scan(&s.ID, &s.PlayerID, &s.Score, &s.BlocksCleared, &s.Level, &s.GameDuration, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// ListRecentWithPlayers retrieves the latest scores joined with their owning
// player's summary. The player is nil for orphaned scores.
func (r *ScoreRepository) ListRecentWithPlayers(ctx context.Context, limit int) ([]domain.ScoreWithPlayer, error) {
	query := `
		SELECT s.id, s.player_id, s.score, s.blocks_cleared, s.level, s.game_duration, s.created_at,
		       p.id, p.name, p.email, p.profile_picture
		FROM scores s
		LEFT JOIN players p ON p.id = s.player_id
		ORDER BY s.created_at DESC
		LIMIT $1
	`
	rows, err := r.db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.ScoreWithPlayer
	for rows.Next() {
		var s domain.ScoreWithPlayer
		var playerID string
		var pID, pName, pEmail, pPicture *string
		err := rows.Scan(
			&s.ID, &playerID, &s.Score, &s.BlocksCleared, &s.Level, &s.GameDuration, &s.CreatedAt,
			&pID, &pName, &pEmail, &pPicture,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning recent score: %w", err)
		}
		if pID != nil {
			s.Player = &domain.ScorePlayer{
				ID:             *pID,
				Name:           *pName,
				Email:          *pEmail,
				ProfilePicture: *pPicture,
			}
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// PlayerAggregate holds the per-player totals derived from the score log
type PlayerAggregate struct {
	PlayerID    string
	GamesPlayed int64
	TotalScore  int64
	HighScore   int64
}

// Aggregates computes per-player count, sum and max over all score records,
// used to verify the incrementally maintained player counters.
func (r *ScoreRepository) Aggregates(ctx context.Context) (map[string]PlayerAggregate, error) {
	query := `
		SELECT player_id, COUNT(*), COALESCE(SUM(score), 0), COALESCE(MAX(score), 0)
		FROM scores
		GROUP BY player_id
	`
	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregating scores: %w", err)
	}
	defer rows.Close()

	aggregates := make(map[string]PlayerAggregate)
	for rows.Next() {
		var a PlayerAggregate
		if err := rows.Scan(&a.PlayerID, &a.GamesPlayed, &a.TotalScore, &a.HighScore); err != nil {
			return nil, fmt.Errorf("scanning aggregate: %w", err)
		}
		aggregates[a.PlayerID] = a
	}
	return aggregates, rows.Err()
}
