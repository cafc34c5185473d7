package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64       { return &v }
func intp(v int) *int             { return &v }
func float64p(v float64) *float64 { return &v }

func TestSubmitScoreRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SubmitScoreRequest
		invalid []string
	}{
		{
			name: "valid minimal",
			req:  SubmitScoreRequest{PlayerID: "p1", Score: int64p(100)},
		},
		{
			name: "valid zero score",
			req:  SubmitScoreRequest{PlayerID: "p1", Score: int64p(0)},
		},
		{
			name:    "missing player",
			req:     SubmitScoreRequest{Score: int64p(10)},
			invalid: []string{"playerId"},
		},
		{
			name:    "missing score",
			req:     SubmitScoreRequest{PlayerID: "p1"},
			invalid: []string{"score"},
		},
		{
			name:    "negative score",
			req:     SubmitScoreRequest{PlayerID: "p1", Score: int64p(-1)},
			invalid: []string{"score"},
		},
		{
			name:    "negative extras",
			req:     SubmitScoreRequest{PlayerID: "p1", Score: int64p(5), BlocksCleared: int64p(-1), Level: intp(0), GameDuration: float64p(-0.5)},
			invalid: []string{"blocksCleared", "level", "gameDuration"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.invalid, fieldNames(tt.req.Validate()))
		})
	}
}

func TestSubmitScoreRequestDefaults(t *testing.T) {
	req := SubmitScoreRequest{PlayerID: "p1", Score: int64p(250)}
	score := req.ToScore()

	assert.Equal(t, "p1", score.PlayerID)
	assert.Equal(t, int64(250), score.Score)
	assert.Equal(t, int64(0), score.BlocksCleared)
	assert.Equal(t, 1, score.Level)
	assert.Equal(t, float64(0), score.GameDuration)
}

func TestSubmitScoreRequestExplicitFields(t *testing.T) {
	req := SubmitScoreRequest{
		PlayerID:      "p1",
		Score:         int64p(250),
		BlocksCleared: int64p(12),
		Level:         intp(4),
		GameDuration:  float64p(93.5),
	}
	score := req.ToScore()

	require.Equal(t, int64(12), score.BlocksCleared)
	assert.Equal(t, 4, score.Level)
	assert.Equal(t, 93.5, score.GameDuration)
}

func TestValidationErrorWrapping(t *testing.T) {
	assert.NoError(t, NewValidationError(nil))

	err := NewValidationError([]FieldError{{Field: "score", Message: "score is required"}})
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "score", ve.Fields[0].Field)
}
