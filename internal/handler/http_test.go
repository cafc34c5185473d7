package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShobhitTomer/blockblast-backend/internal/config"
	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
	"github.com/ShobhitTomer/blockblast-backend/internal/memstore"
	"github.com/ShobhitTomer/blockblast-backend/internal/service"
)

// envelope mirrors APIResponse for decoding in assertions
type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       json.RawMessage     `json:"data"`
	Errors     []domain.FieldError `json:"errors"`
	Count      *int                `json:"count"`
	Pagination *domain.Pagination  `json:"pagination"`
}

type testServer struct {
	router    http.Handler
	players   *memstore.PlayerStore
	playerSvc *service.PlayerService
	scoreSvc  *service.ScoreService
}

func newTestServer() *testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	players := memstore.NewPlayerStore()
	scores := memstore.NewScoreStore(players)
	cfg := &config.LeaderboardConfig{DefaultPageSize: 10, TopPlayersLimit: 5, MaxLimit: 100}

	playerSvc := service.NewPlayerService(players, logger)
	scoreSvc := service.NewScoreService(players, scores, cfg.MaxLimit, logger)
	leaderboard := service.NewLeaderboardService(players, cfg, logger)

	h := NewHandler(playerSvc, scoreSvc, leaderboard, logger)
	return &testServer{
		router:    h.Router(),
		players:   players,
		playerSvc: playerSvc,
		scoreSvc:  scoreSvc,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func (ts *testServer) createPlayer(t *testing.T, name, email string) *domain.Player {
	t.Helper()
	player, err := ts.playerSvc.Create(context.Background(), domain.CreatePlayerRequest{
		Name:  name,
		Email: email,
	})
	require.NoError(t, err)
	return player
}

func (ts *testServer) submit(t *testing.T, playerID string, score int64) {
	t.Helper()
	_, err := ts.scoreSvc.Submit(context.Background(), domain.SubmitScoreRequest{
		PlayerID: playerID,
		Score:    &score,
	})
	require.NoError(t, err)
}

func TestCreatePlayerEndpoint(t *testing.T) {
	ts := newTestServer()

	rec, env := ts.do(t, http.MethodPost, "/api/players", map[string]string{
		"name":  "Anna",
		"email": "Anna@Example.com",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Player created successfully", env.Message)

	var player map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &player))
	assert.Equal(t, "anna@example.com", player["email"])
	assert.Equal(t, domain.DefaultProfilePicture, player["profilePicture"])
	assert.EqualValues(t, 0, player["averageScore"])
}

func TestCreatePlayerValidationErrors(t *testing.T) {
	ts := newTestServer()

	rec, env := ts.do(t, http.MethodPost, "/api/players", map[string]string{
		"name":  "A",
		"email": "bad",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation error", env.Message)
	require.Len(t, env.Errors, 2)

	fields := []string{env.Errors[0].Field, env.Errors[1].Field}
	assert.ElementsMatch(t, []string{"name", "email"}, fields)
}

func TestCreatePlayerMalformedBody(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/players", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlayerDuplicateEmailEndpoint(t *testing.T) {
	ts := newTestServer()
	ts.createPlayer(t, "Anna", "anna@example.com")

	rec, env := ts.do(t, http.MethodPost, "/api/players", map[string]string{
		"name":  "Annabelle",
		"email": "anna@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "email", env.Errors[0].Field)
}

func TestListPlayersEndpoint(t *testing.T) {
	ts := newTestServer()
	ts.createPlayer(t, "Anna", "anna@example.com")
	ts.createPlayer(t, "Ben", "ben@example.com")

	rec, env := ts.do(t, http.MethodGet, "/api/players", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)

	var players []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &players))
	require.Len(t, players, 2)
	// newest first
	assert.Equal(t, "Ben", players[0]["name"])
}

func TestGetPlayerNotFound(t *testing.T) {
	ts := newTestServer()

	rec, env := ts.do(t, http.MethodGet, "/api/players/11111111-1111-1111-1111-111111111111", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Player not found", env.Message)
}

func TestGetPlayerByEmailEndpoint(t *testing.T) {
	ts := newTestServer()
	created := ts.createPlayer(t, "Anna", "anna@example.com")

	rec, env := ts.do(t, http.MethodGet, "/api/players/email/anna@example.com", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var player map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &player))
	assert.Equal(t, created.ID, player["id"])
}

func TestUpdateAndDeletePlayerEndpoints(t *testing.T) {
	ts := newTestServer()
	player := ts.createPlayer(t, "Anna", "anna@example.com")

	rec, env := ts.do(t, http.MethodPut, "/api/players/"+player.ID, map[string]string{
		"name": "Annabelle",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Player updated successfully", env.Message)

	rec, env = ts.do(t, http.MethodDelete, "/api/players/"+player.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Player deleted successfully", env.Message)

	rec, _ = ts.do(t, http.MethodGet, "/api/players/"+player.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitScoreEndpoint(t *testing.T) {
	ts := newTestServer()
	player := ts.createPlayer(t, "Anna", "anna@example.com")

	rec, env := ts.do(t, http.MethodPost, "/api/scores", map[string]interface{}{
		"playerId": player.ID,
		"score":    120,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Score submitted successfully", env.Message)

	var result struct {
		Player struct {
			HighScore   int64 `json:"highScore"`
			GamesPlayed int64 `json:"gamesPlayed"`
		} `json:"player"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(120), result.Player.HighScore)
	assert.Equal(t, int64(1), result.Player.GamesPlayed)
}

func TestSubmitScoreUnknownPlayer(t *testing.T) {
	ts := newTestServer()

	rec, env := ts.do(t, http.MethodPost, "/api/scores", map[string]interface{}{
		"playerId": "11111111-1111-1111-1111-111111111111",
		"score":    120,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Player not found", env.Message)
}

func TestSubmitScoreMissingFields(t *testing.T) {
	ts := newTestServer()

	rec, env := ts.do(t, http.MethodPost, "/api/scores", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, env.Errors)
}

func TestPlayerScoresEndpoints(t *testing.T) {
	ts := newTestServer()
	player := ts.createPlayer(t, "Anna", "anna@example.com")
	ts.submit(t, player.ID, 40)
	ts.submit(t, player.ID, 90)
	ts.submit(t, player.ID, 60)

	rec, env := ts.do(t, http.MethodGet, "/api/scores/player/"+player.ID+"/best?limit=2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var scores []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &scores))
	require.Len(t, scores, 2)
	assert.EqualValues(t, 90, scores[0]["score"])
	assert.EqualValues(t, 60, scores[1]["score"])

	rec, env = ts.do(t, http.MethodGet, "/api/scores/player/"+player.ID+"/recent?limit=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &scores))
	require.Len(t, scores, 1)
	assert.EqualValues(t, 60, scores[0]["score"])
}

func TestListScoresJoinsPlayers(t *testing.T) {
	ts := newTestServer()
	player := ts.createPlayer(t, "Anna", "anna@example.com")
	ts.submit(t, player.ID, 75)

	rec, env := ts.do(t, http.MethodGet, "/api/scores", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var scores []struct {
		Score  int64 `json:"score"`
		Player *struct {
			Name string `json:"name"`
		} `json:"player"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &scores))
	require.Len(t, scores, 1)
	require.NotNil(t, scores[0].Player)
	assert.Equal(t, "Anna", scores[0].Player.Name)
}

func TestLeaderboardEndpoint(t *testing.T) {
	ts := newTestServer()
	anna := ts.createPlayer(t, "Anna", "anna@example.com")
	ben := ts.createPlayer(t, "Ben", "ben@example.com")
	ts.submit(t, anna.ID, 100)
	ts.submit(t, ben.ID, 80)

	rec, env := ts.do(t, http.MethodGet, "/api/leaderboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(2), env.Pagination.TotalPlayers)

	var rows []struct {
		Rank int64  `json:"rank"`
		ID   string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Rank)
	assert.Equal(t, anna.ID, rows[0].ID)
}

func TestLeaderboardPageBeyondEndEndpoint(t *testing.T) {
	ts := newTestServer()
	ts.createPlayer(t, "Anna", "anna@example.com")

	rec, env := ts.do(t, http.MethodGet, "/api/leaderboard?page=99", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
}

func TestPlayerRankEndpoint(t *testing.T) {
	ts := newTestServer()
	anna := ts.createPlayer(t, "Anna", "anna@example.com")
	ben := ts.createPlayer(t, "Ben", "ben@example.com")
	ts.submit(t, anna.ID, 100)
	ts.submit(t, ben.ID, 80)

	rec, env := ts.do(t, http.MethodGet, "/api/leaderboard/rank/"+ben.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var ranking struct {
		Rank          int64 `json:"rank"`
		TotalPlayers  int64 `json:"totalPlayers"`
		Percentile    int64 `json:"percentile"`
		NearbyPlayers struct {
			Above []struct {
				ID string `json:"id"`
			} `json:"above"`
		} `json:"nearbyPlayers"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ranking))
	assert.Equal(t, int64(2), ranking.Rank)
	assert.Equal(t, int64(2), ranking.TotalPlayers)
	assert.Equal(t, int64(50), ranking.Percentile)
	require.Len(t, ranking.NearbyPlayers.Above, 1)
	assert.Equal(t, anna.ID, ranking.NearbyPlayers.Above[0].ID)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer()

	rec, env := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Block Blast API is running", env.Message)

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "healthy", data["status"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestIndexEndpoint(t *testing.T) {
	ts := newTestServer()

	rec, env := ts.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var data struct {
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, data.Endpoints, "leaderboard")
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer()

	rec, env := ts.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Message)
}
