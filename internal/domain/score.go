package domain

import "time"

// Score is one immutable record of a completed game session
type Score struct {
	ID            string    `json:"id"`
	PlayerID      string    `json:"player"`
	Score         int64     `json:"score"`
	BlocksCleared int64     `json:"blocksCleared"`
	Level         int       `json:"level"`
	GameDuration  float64   `json:"gameDuration"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ScorePlayer is the owning player summary joined onto a score
type ScorePlayer struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
}

// ScoreWithPlayer is a score with its owning player's summary joined in
// place of the bare reference. Player is null when the owner was deleted
// after the score was recorded.
type ScoreWithPlayer struct {
	ID            string       `json:"id"`
	Player        *ScorePlayer `json:"player"`
	Score         int64        `json:"score"`
	BlocksCleared int64        `json:"blocksCleared"`
	Level         int          `json:"level"`
	GameDuration  float64      `json:"gameDuration"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// SubmitScoreRequest represents a score submission. Pointer fields
// distinguish an omitted value from an explicit zero.
type SubmitScoreRequest struct {
	PlayerID      string   `json:"playerId"`
	Score         *int64   `json:"score"`
	BlocksCleared *int64   `json:"blocksCleared,omitempty"`
	Level         *int     `json:"level,omitempty"`
	GameDuration  *float64 `json:"gameDuration,omitempty"`
}

// Validate checks the submission fields and returns per-field errors
func (r *SubmitScoreRequest) Validate() []FieldError {
	var errs []FieldError

	if r.PlayerID == "" {
		errs = append(errs, FieldError{Field: "playerId", Message: "playerId is required"})
	}
	if r.Score == nil {
		errs = append(errs, FieldError{Field: "score", Message: "score is required"})
	} else if *r.Score < 0 {
		errs = append(errs, FieldError{Field: "score", Message: "score cannot be negative"})
	}
	if r.BlocksCleared != nil && *r.BlocksCleared < 0 {
		errs = append(errs, FieldError{Field: "blocksCleared", Message: "blocksCleared cannot be negative"})
	}
	if r.Level != nil && *r.Level < 1 {
		errs = append(errs, FieldError{Field: "level", Message: "level must be at least 1"})
	}
	if r.GameDuration != nil && *r.GameDuration < 0 {
		errs = append(errs, FieldError{Field: "gameDuration", Message: "gameDuration cannot be negative"})
	}

	return errs
}

// ToScore builds the score record with defaults applied to omitted fields
func (r *SubmitScoreRequest) ToScore() Score {
	s := Score{
		PlayerID: r.PlayerID,
		Level:    1,
	}
	if r.Score != nil {
		s.Score = *r.Score
	}
	if r.BlocksCleared != nil {
		s.BlocksCleared = *r.BlocksCleared
	}
	if r.Level != nil {
		s.Level = *r.Level
	}
	if r.GameDuration != nil {
		s.GameDuration = *r.GameDuration
	}
	return s
}

// SubmitScoreResult is returned after a successful submission
type SubmitScoreResult struct {
	Score  Score              `json:"score"`
	Player SubmittedPlayerRef `json:"player"`
}

// SubmittedPlayerRef is the post-submission summary of the updated player
type SubmittedPlayerRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HighScore   int64  `json:"highScore"`
	GamesPlayed int64  `json:"gamesPlayed"`
}
