package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ShobhitTomer/blockblast-backend/internal/config"
	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
	"github.com/ShobhitTomer/blockblast-backend/internal/memstore"
)

type testEnv struct {
	players     *memstore.PlayerStore
	scores      *memstore.ScoreStore
	playerSvc   *PlayerService
	scoreSvc    *ScoreService
	leaderboard *LeaderboardService
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	players := memstore.NewPlayerStore()
	scores := memstore.NewScoreStore(players)
	cfg := &config.LeaderboardConfig{DefaultPageSize: 10, TopPlayersLimit: 5, MaxLimit: 100}

	return &testEnv{
		players:     players,
		scores:      scores,
		playerSvc:   NewPlayerService(players, logger),
		scoreSvc:    NewScoreService(players, scores, cfg.MaxLimit, logger),
		leaderboard: NewLeaderboardService(players, cfg, logger),
	}
}

func (e *testEnv) createPlayer(t *testing.T, name, email string) *domain.Player {
	t.Helper()
	player, err := e.playerSvc.Create(context.Background(), domain.CreatePlayerRequest{
		Name:  name,
		Email: email,
	})
	require.NoError(t, err)
	return player
}

func (e *testEnv) submit(t *testing.T, playerID string, score int64) *domain.SubmitScoreResult {
	t.Helper()
	result, err := e.scoreSvc.Submit(context.Background(), domain.SubmitScoreRequest{
		PlayerID: playerID,
		Score:    &score,
	})
	require.NoError(t, err)
	return result
}
