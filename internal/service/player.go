package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
	"github.com/ShobhitTomer/blockblast-backend/internal/metrics"
)

// PlayerStore is the player persistence contract used by the services
type PlayerStore interface {
	Create(ctx context.Context, p *domain.Player) error
	GetByID(ctx context.Context, id string) (*domain.Player, error)
	GetByEmail(ctx context.Context, email string) (*domain.Player, error)
	Update(ctx context.Context, p *domain.Player) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Player, error)
	ListByHighScore(ctx context.Context, limit, offset int) ([]domain.Player, error)
	Count(ctx context.Context) (int64, error)
	CountWithHigherScore(ctx context.Context, score int64) (int64, error)
	ListAbove(ctx context.Context, score int64, limit int) ([]domain.Player, error)
	ListBelow(ctx context.Context, score int64, limit int) ([]domain.Player, error)
	SumGamesPlayed(ctx context.Context) (int64, error)
	ApplyScore(ctx context.Context, playerID string, score int64, playedAt time.Time) (*domain.Player, error)
}

// PlayerService provides player account management
type PlayerService struct {
	players PlayerStore
	logger  *slog.Logger
}

// NewPlayerService creates a new player service
func NewPlayerService(players PlayerStore, logger *slog.Logger) *PlayerService {
	return &PlayerService{players: players, logger: logger}
}

// Create registers a new player
func (s *PlayerService) Create(ctx context.Context, req domain.CreatePlayerRequest) (*domain.Player, error) {
	if err := domain.NewValidationError(req.Validate()); err != nil {
		return nil, err
	}

	player := &domain.Player{
		Name:           req.Name,
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
	}
	if player.ProfilePicture == "" {
		player.ProfilePicture = domain.DefaultProfilePicture
	}

	if err := s.players.Create(ctx, player); err != nil {
		return nil, err
	}

	metrics.RecordPlayerCreated()
	return player, nil
}

// Get retrieves a player by identifier
func (s *PlayerService) Get(ctx context.Context, id string) (*domain.Player, error) {
	return s.players.GetByID(ctx, id)
}

// GetByEmail retrieves a player by email, case-insensitively
func (s *PlayerService) GetByEmail(ctx context.Context, email string) (*domain.Player, error) {
	return s.players.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List retrieves all players, newest first
func (s *PlayerService) List(ctx context.Context) ([]domain.Player, error) {
	players, err := s.players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	if players == nil {
		players = []domain.Player{}
	}
	return players, nil
}

// Update applies a partial profile update to a player
func (s *PlayerService) Update(ctx context.Context, id string, req domain.UpdatePlayerRequest) (*domain.Player, error) {
	if err := domain.NewValidationError(req.Validate()); err != nil {
		return nil, err
	}

	player, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(player)
	if err := s.players.Update(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// Delete removes a player. Their score records are left in place.
func (s *PlayerService) Delete(ctx context.Context, id string) error {
	return s.players.Delete(ctx, id)
}

// Stats returns a player's own statistics view
func (s *PlayerService) Stats(ctx context.Context, id string) (*domain.PlayerStats, error) {
	player, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := player.Stats()
	return &stats, nil
}
