package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
)

func TestSubmitUpdatesPlayerCounters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.createPlayer(t, "Alice", "alice@example.com")

	result := env.submit(t, p.ID, 50)
	assert.Equal(t, int64(50), result.Player.HighScore)
	assert.Equal(t, int64(1), result.Player.GamesPlayed)
	assert.Equal(t, p.ID, result.Score.PlayerID)
	assert.NotEmpty(t, result.Score.ID)

	updated, err := env.playerSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), updated.HighScore)
	assert.Equal(t, int64(1), updated.GamesPlayed)
	assert.Equal(t, int64(50), updated.TotalScore)
	assert.Equal(t, int64(50), updated.AverageScore())
	require.NotNil(t, updated.LastPlayed)

	// a lower score counts toward the totals but keeps the high score
	env.submit(t, p.ID, 30)
	updated, err = env.playerSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), updated.HighScore)
	assert.Equal(t, int64(2), updated.GamesPlayed)
	assert.Equal(t, int64(80), updated.TotalScore)
	assert.Equal(t, int64(40), updated.AverageScore())
}

func TestSubmitUnknownPlayerCreatesNoScore(t *testing.T) {
	env := newTestEnv()
	score := int64(100)

	_, err := env.scoreSvc.Submit(context.Background(), domain.SubmitScoreRequest{
		PlayerID: "11111111-1111-1111-1111-111111111111",
		Score:    &score,
	})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	assert.Equal(t, 0, env.scores.Count())
}

func TestSubmitRejectsInvalidRequest(t *testing.T) {
	env := newTestEnv()
	p := env.createPlayer(t, "Alice", "alice@example.com")
	negative := int64(-5)

	_, err := env.scoreSvc.Submit(context.Background(), domain.SubmitScoreRequest{
		PlayerID: p.ID,
		Score:    &negative,
	})

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "score", ve.Fields[0].Field)
	assert.Equal(t, 0, env.scores.Count())
}

func TestSubmitAppliesDefaults(t *testing.T) {
	env := newTestEnv()
	p := env.createPlayer(t, "Alice", "alice@example.com")

	result := env.submit(t, p.ID, 10)
	assert.Equal(t, 1, result.Score.Level)
	assert.Equal(t, int64(0), result.Score.BlocksCleared)
	assert.Equal(t, float64(0), result.Score.GameDuration)
}

func TestRecentAndBestScores(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.createPlayer(t, "Alice", "alice@example.com")

	for _, v := range []int64{10, 300, 40, 200, 5} {
		env.submit(t, p.ID, v)
	}

	recent, err := env.scoreSvc.RecentScores(ctx, p.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(5), recent[0].Score)
	assert.Equal(t, int64(200), recent[1].Score)

	best, err := env.scoreSvc.BestScores(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, int64(300), best[0].Score)
	assert.Equal(t, int64(200), best[1].Score)

	// limit 0 falls back to the default of 10
	all, err := env.scoreSvc.RecentScores(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestAllScoresJoinsPlayerSummaries(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.createPlayer(t, "Alice", "alice@example.com")
	env.submit(t, p.ID, 75)

	scores, err := env.scoreSvc.AllScores(ctx)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.NotNil(t, scores[0].Player)
	assert.Equal(t, "Alice", scores[0].Player.Name)
	assert.Equal(t, "alice@example.com", scores[0].Player.Email)
}

func TestDeletedPlayerLeavesOrphanedScores(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.createPlayer(t, "Alice", "alice@example.com")
	env.submit(t, p.ID, 75)

	require.NoError(t, env.playerSvc.Delete(ctx, p.ID))

	scores, err := env.scoreSvc.AllScores(ctx)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Nil(t, scores[0].Player)
}
