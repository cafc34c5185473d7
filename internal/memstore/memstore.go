// Package memstore provides in-memory player and score stores with the
// same ordering semantics as the PostgreSQL repositories. It backs the
// service and handler tests; nothing in it is safe for production use
// beyond its mutex.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
	"github.com/ShobhitTomer/blockblast-backend/internal/postgres"
)

// PlayerStore is an in-memory player store
type PlayerStore struct {
	mu      sync.Mutex
	players map[string]*domain.Player
	seq     int
	base    time.Time
}

// NewPlayerStore creates an empty in-memory player store
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{
		players: make(map[string]*domain.Player),
		base:    time.Now().UTC(),
	}
}

// next returns a strictly increasing timestamp so creation order is a
// total order, matching the created_at tie-break of the SQL queries.
func (s *PlayerStore) next() time.Time {
	s.seq++
	return s.base.Add(time.Duration(s.seq) * time.Millisecond)
}

// Create inserts a player, enforcing email uniqueness
func (s *PlayerStore) Create(ctx context.Context, p *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.players {
		if strings.EqualFold(existing.Email, p.Email) {
			return domain.ErrDuplicateEmail
		}
	}

	p.ID = uuid.NewString()
	now := s.next()
	p.CreatedAt = now
	p.UpdatedAt = now

	clone := *p
	s.players[p.ID] = &clone
	return nil
}

// GetByID retrieves a player by identifier
func (s *PlayerStore) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	clone := *p
	return &clone, nil
}

// GetByEmail retrieves a player by email
func (s *PlayerStore) GetByEmail(ctx context.Context, email string) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.players {
		if p.Email == email {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

// Update persists the player's profile fields
func (s *PlayerStore) Update(ctx context.Context, p *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.players[p.ID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	for id, other := range s.players {
		if id != p.ID && strings.EqualFold(other.Email, p.Email) {
			return domain.ErrDuplicateEmail
		}
	}

	existing.Name = p.Name
	existing.Email = p.Email
	existing.ProfilePicture = p.ProfilePicture
	existing.UpdatedAt = s.next()
	p.UpdatedAt = existing.UpdatedAt
	return nil
}

// Delete removes a player
func (s *PlayerStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return domain.ErrPlayerNotFound
	}
	delete(s.players, id)
	return nil
}

// List returns all players, newest first
func (s *PlayerStore) List(ctx context.Context) ([]domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := s.snapshot()
	sort.Slice(players, func(i, j int) bool {
		return players[i].CreatedAt.After(players[j].CreatedAt)
	})
	return players, nil
}

// ListByHighScore returns players ordered by high score descending, ties
// broken by earliest registration then id
func (s *PlayerStore) ListByHighScore(ctx context.Context, limit, offset int) ([]domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := s.sortedByHighScore()
	if offset >= len(players) {
		return nil, nil
	}
	players = players[offset:]
	if limit < len(players) {
		players = players[:limit]
	}
	return players, nil
}

// Count returns the total number of players
func (s *PlayerStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.players)), nil
}

// CountWithHigherScore returns how many players score strictly above
func (s *PlayerStore) CountWithHigherScore(ctx context.Context, score int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, p := range s.players {
		if p.HighScore > score {
			count++
		}
	}
	return count, nil
}

// ListAbove returns players scoring strictly above, best first
func (s *PlayerStore) ListAbove(ctx context.Context, score int64, limit int) ([]domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Player
	for _, p := range s.sortedByHighScore() {
		if p.HighScore > score {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// ListBelow returns players scoring strictly below, best first
func (s *PlayerStore) ListBelow(ctx context.Context, score int64, limit int) ([]domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Player
	for _, p := range s.sortedByHighScore() {
		if p.HighScore < score {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// SumGamesPlayed returns the total games played across all players
func (s *PlayerStore) SumGamesPlayed(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, p := range s.players {
		total += p.GamesPlayed
	}
	return total, nil
}

// ApplyScore folds a score into the player's counters atomically
func (s *PlayerStore) ApplyScore(ctx context.Context, playerID string, score int64, playedAt time.Time) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}

	p.GamesPlayed++
	p.TotalScore += score
	if score > p.HighScore {
		p.HighScore = score
	}
	played := playedAt
	p.LastPlayed = &played
	p.UpdatedAt = playedAt

	clone := *p
	return &clone, nil
}

// SetCounters overwrites the player's aggregate counters
func (s *PlayerStore) SetCounters(ctx context.Context, playerID string, gamesPlayed, totalScore, highScore int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	p.GamesPlayed = gamesPlayed
	p.TotalScore = totalScore
	p.HighScore = highScore
	return nil
}

func (s *PlayerStore) snapshot() []domain.Player {
	players := make([]domain.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, *p)
	}
	return players
}

func (s *PlayerStore) sortedByHighScore() []domain.Player {
	players := s.snapshot()
	sort.Slice(players, func(i, j int) bool {
		if players[i].HighScore != players[j].HighScore {
			return players[i].HighScore > players[j].HighScore
		}
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.Before(players[j].CreatedAt)
		}
		return players[i].ID < players[j].ID
	})
	return players
}

// ScoreStore is an in-memory score store joined against a PlayerStore
type ScoreStore struct {
	mu      sync.Mutex
	scores  []domain.Score
	players *PlayerStore
	seq     int
	base    time.Time
}

// NewScoreStore creates an empty score store joined to the given players
func NewScoreStore(players *PlayerStore) *ScoreStore {
	return &ScoreStore{players: players, base: time.Now().UTC()}
}

// Create appends a score record
func (s *ScoreStore) Create(ctx context.Context, score *domain.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	score.ID = uuid.NewString()
	s.seq++
	score.CreatedAt = s.base.Add(time.Duration(s.seq) * time.Millisecond)
	s.scores = append(s.scores, *score)
	return nil
}

// Count returns the number of stored score records
func (s *ScoreStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scores)
}

// ListByPlayer returns a player's scores in the given order
func (s *ScoreStore) ListByPlayer(ctx context.Context, playerID string, order postgres.ScoreOrder, limit int) ([]domain.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Score
	for _, score := range s.scores {
		if score.PlayerID == playerID {
			out = append(out, score)
		}
	}

	if order == postgres.ScoreOrderBest {
		sort.Slice(out, func(i, j int) bool {
			if out[i].Score != out[j].Score {
				return out[i].Score > out[j].Score
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	} else {
		sort.Slice(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ListRecentWithPlayers returns the latest scores with owning players joined
func (s *ScoreStore) ListRecentWithPlayers(ctx context.Context, limit int) ([]domain.ScoreWithPlayer, error) {
	s.mu.Lock()
	scores := make([]domain.Score, len(s.scores))
	copy(scores, s.scores)
	s.mu.Unlock()

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].CreatedAt.After(scores[j].CreatedAt)
	})
	if limit < len(scores) {
		scores = scores[:limit]
	}

	out := make([]domain.ScoreWithPlayer, 0, len(scores))
	for _, score := range scores {
		enriched := domain.ScoreWithPlayer{
			ID:            score.ID,
			Score:         score.Score,
			BlocksCleared: score.BlocksCleared,
			Level:         score.Level,
			GameDuration:  score.GameDuration,
			CreatedAt:     score.CreatedAt,
		}
		if p, err := s.players.GetByID(ctx, score.PlayerID); err == nil {
			enriched.Player = &domain.ScorePlayer{
				ID:             p.ID,
				Name:           p.Name,
				Email:          p.Email,
				ProfilePicture: p.ProfilePicture,
			}
		}
		out = append(out, enriched)
	}
	return out, nil
}

// Aggregates computes per-player count, sum and max over all scores
func (s *ScoreStore) Aggregates(ctx context.Context) (map[string]postgres.PlayerAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aggregates := make(map[string]postgres.PlayerAggregate)
	for _, score := range s.scores {
		a := aggregates[score.PlayerID]
		a.PlayerID = score.PlayerID
		a.GamesPlayed++
		a.TotalScore += score.Score
		if score.Score > a.HighScore {
			a.HighScore = score.Score
		}
		aggregates[score.PlayerID] = a
	}
	return aggregates, nil
}
