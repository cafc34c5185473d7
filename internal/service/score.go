package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
	"github.com/ShobhitTomer/blockblast-backend/internal/metrics"
	"github.com/ShobhitTomer/blockblast-backend/internal/postgres"
)

// History query limits; clients cannot raise these.
const (
	allScoresLimit    = 100
	playerScoresLimit = 50
	defaultListLimit  = 10
)

// ScoreStore is the score persistence contract used by the services
type ScoreStore interface {
	Create(ctx context.Context, s *domain.Score) error
	ListByPlayer(ctx context.Context, playerID string, order postgres.ScoreOrder, limit int) ([]domain.Score, error)
	ListRecentWithPlayers(ctx context.Context, limit int) ([]domain.ScoreWithPlayer, error)
}

// ScoreService handles score ingestion and score history queries
type ScoreService struct {
	players  PlayerStore
	scores   ScoreStore
	maxLimit int
	logger   *slog.Logger
}

// NewScoreService creates a new score service
func NewScoreService(players PlayerStore, scores ScoreStore, maxLimit int, logger *slog.Logger) *ScoreService {
	return &ScoreService{
		players:  players,
		scores:   scores,
		maxLimit: maxLimit,
		logger:   logger,
	}
}

// Submit validates and records a score event, then folds it into the owning
// player's counters. The two writes are not transactional: a crash between
// them leaves a score the counters do not reflect, which the reconciliation
// worker detects.
func (s *ScoreService) Submit(ctx context.Context, req domain.SubmitScoreRequest) (*domain.SubmitScoreResult, error) {
	if err := domain.NewValidationError(req.Validate()); err != nil {
		metrics.RecordScoreRejected()
		return nil, err
	}

	player, err := s.players.GetByID(ctx, req.PlayerID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			metrics.RecordScoreRejected()
		}
		return nil, err
	}

	score := req.ToScore()
	if err := s.scores.Create(ctx, &score); err != nil {
		return nil, fmt.Errorf("recording score: %w", err)
	}

	updated, err := s.players.ApplyScore(ctx, player.ID, score.Score, time.Now().UTC())
	if err != nil {
		// The score record exists but the counters were not updated.
		s.logger.Error("player counters diverged from score log",
			"player_id", player.ID,
			"score_id", score.ID,
			"error", err,
		)
		return nil, fmt.Errorf("updating player statistics: %w", err)
	}

	metrics.RecordScoreSubmitted()

	return &domain.SubmitScoreResult{
		Score: score,
		Player: domain.SubmittedPlayerRef{
			ID:          updated.ID,
			Name:        updated.Name,
			HighScore:   updated.HighScore,
			GamesPlayed: updated.GamesPlayed,
		},
	}, nil
}

// SubmitBatch processes a batch of submissions, logging and skipping failures
func (s *ScoreService) SubmitBatch(ctx context.Context, batch []domain.SubmitScoreRequest) {
	for _, req := range batch {
		if _, err := s.Submit(ctx, req); err != nil {
			s.logger.Error("failed to submit score in batch",
				"player_id", req.PlayerID,
				"error", err,
			)
		}
	}
}

// PlayerScores returns up to 50 most recent scores for a player
func (s *ScoreService) PlayerScores(ctx context.Context, playerID string) ([]domain.Score, error) {
	return s.listByPlayer(ctx, playerID, postgres.ScoreOrderRecent, playerScoresLimit)
}

// RecentScores returns a player's most recent scores
func (s *ScoreService) RecentScores(ctx context.Context, playerID string, limit int) ([]domain.Score, error) {
	return s.listByPlayer(ctx, playerID, postgres.ScoreOrderRecent, s.clampLimit(limit))
}

// BestScores returns a player's highest scores
func (s *ScoreService) BestScores(ctx context.Context, playerID string, limit int) ([]domain.Score, error) {
	return s.listByPlayer(ctx, playerID, postgres.ScoreOrderBest, s.clampLimit(limit))
}

// AllScores returns the latest scores across all players, each joined with
// its owning player's summary
func (s *ScoreService) AllScores(ctx context.Context) ([]domain.ScoreWithPlayer, error) {
	scores, err := s.scores.ListRecentWithPlayers(ctx, allScoresLimit)
	if err != nil {
		return nil, fmt.Errorf("listing all scores: %w", err)
	}
	if scores == nil {
		scores = []domain.ScoreWithPlayer{}
	}
	return scores, nil
}

func (s *ScoreService) listByPlayer(ctx context.Context, playerID string, order postgres.ScoreOrder, limit int) ([]domain.Score, error) {
	scores, err := s.scores.ListByPlayer(ctx, playerID, order, limit)
	if err != nil {
		return nil, fmt.Errorf("listing player scores: %w", err)
	}
	if scores == nil {
		scores = []domain.Score{}
	}
	return scores, nil
}

func (s *ScoreService) clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}
