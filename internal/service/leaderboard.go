package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/ShobhitTomer/blockblast-backend/internal/config"
	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
)

// Neighbor window on either side of a ranked player.
const nearbyWindow = 2

// LeaderboardService computes rankings and global statistics on demand
// from the player store; it holds no state between requests.
type LeaderboardService struct {
	players PlayerStore
	config  *config.LeaderboardConfig
	logger  *slog.Logger
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(players PlayerStore, cfg *config.LeaderboardConfig, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{players: players, config: cfg, logger: logger}
}

// TopPlayers returns the top players by high score, each annotated with
// its 1-based position
func (s *LeaderboardService) TopPlayers(ctx context.Context, limit int) ([]domain.RankedPlayer, error) {
	if limit <= 0 {
		limit = s.config.TopPlayersLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}

	players, err := s.players.ListByHighScore(ctx, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("getting top players: %w", err)
	}

	ranked := make([]domain.RankedPlayer, len(players))
	for i := range players {
		ranked[i] = domain.RankedPlayer{
			Rank:          int64(i + 1),
			PlayerSummary: players[i].Summary(),
		}
	}
	return ranked, nil
}

// Page returns one page of the full leaderboard. Pages beyond the end
// yield an empty data set, not an error.
func (s *LeaderboardService) Page(ctx context.Context, page, limit int) (*domain.LeaderboardPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = s.config.DefaultPageSize
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}
	skip := (page - 1) * limit

	players, err := s.players.ListByHighScore(ctx, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard page: %w", err)
	}

	total, err := s.players.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting players: %w", err)
	}

	ranked := make([]domain.RankedPlayer, len(players))
	for i := range players {
		ranked[i] = domain.RankedPlayer{
			Rank:          int64(skip + i + 1),
			PlayerSummary: players[i].Summary(),
		}
	}

	return &domain.LeaderboardPage{
		Players: ranked,
		Pagination: domain.Pagination{
			Page:         page,
			Limit:        limit,
			TotalPages:   int64(math.Ceil(float64(total) / float64(limit))),
			TotalPlayers: total,
		},
	}, nil
}

// PlayerRank computes a player's global rank, percentile and rank neighbors.
// Rank is 1 plus the number of players with a strictly greater high score,
// so tied players share a rank.
func (s *LeaderboardService) PlayerRank(ctx context.Context, playerID string) (*domain.PlayerRanking, error) {
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	higher, err := s.players.CountWithHigherScore(ctx, player.HighScore)
	if err != nil {
		return nil, fmt.Errorf("counting higher-scored players: %w", err)
	}
	rank := higher + 1

	total, err := s.players.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting players: %w", err)
	}

	above, err := s.players.ListAbove(ctx, player.HighScore, nearbyWindow)
	if err != nil {
		return nil, fmt.Errorf("getting players above: %w", err)
	}
	below, err := s.players.ListBelow(ctx, player.HighScore, nearbyWindow)
	if err != nil {
		return nil, fmt.Errorf("getting players below: %w", err)
	}

	// Above comes back best-first; reverse so the closest player sits last,
	// conceptually right before the subject.
	nearbyAbove := make([]domain.NearbyPlayer, len(above))
	for i := range above {
		nearbyAbove[len(above)-1-i] = nearbyPlayer(&above[i])
	}
	nearbyBelow := make([]domain.NearbyPlayer, len(below))
	for i := range below {
		nearbyBelow[i] = nearbyPlayer(&below[i])
	}

	return &domain.PlayerRanking{
		Player: domain.RankedPlayerDetail{
			ID:             player.ID,
			Name:           player.Name,
			Email:          player.Email,
			ProfilePicture: player.ProfilePicture,
			HighScore:      player.HighScore,
			GamesPlayed:    player.GamesPlayed,
			TotalScore:     player.TotalScore,
			AverageScore:   player.AverageScore(),
		},
		Rank:         rank,
		TotalPlayers: total,
		Percentile:   percentile(rank, total),
		NearbyPlayers: domain.NearbyPlayers{
			Above: nearbyAbove,
			Below: nearbyBelow,
		},
	}, nil
}

// Stats returns the global totals across all players
func (s *LeaderboardService) Stats(ctx context.Context) (*domain.LeaderboardStats, error) {
	total, err := s.players.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting players: %w", err)
	}

	games, err := s.players.SumGamesPlayed(ctx)
	if err != nil {
		return nil, fmt.Errorf("summing games played: %w", err)
	}

	stats := &domain.LeaderboardStats{
		TotalPlayers:     total,
		TotalGamesPlayed: games,
	}

	top, err := s.players.ListByHighScore(ctx, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("getting top player: %w", err)
	}
	if len(top) > 0 {
		stats.TopPlayer = &domain.TopPlayerRef{
			ID:             top[0].ID,
			Name:           top[0].Name,
			ProfilePicture: top[0].ProfilePicture,
			HighScore:      top[0].HighScore,
		}
	}

	return stats, nil
}

// percentile maps rank 1 to 100 and the bottom rank toward zero. The exact
// formula is load-bearing for API compatibility.
func percentile(rank, total int64) int64 {
	if total <= 0 {
		return 100
	}
	return int64(math.Round(float64(total-rank+1) / float64(total) * 100))
}

func nearbyPlayer(p *domain.Player) domain.NearbyPlayer {
	return domain.NearbyPlayer{
		ID:             p.ID,
		Name:           p.Name,
		ProfilePicture: p.ProfilePicture,
		HighScore:      p.HighScore,
	}
}
