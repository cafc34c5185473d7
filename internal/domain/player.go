package domain

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultProfilePicture is used when a player registers without one.
const DefaultProfilePicture = "https://via.placeholder.com/150"

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Player represents a registered player and their cumulative score statistics
type Player struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	ProfilePicture string     `json:"profilePicture"`
	GamesPlayed    int64      `json:"gamesPlayed"`
	HighScore      int64      `json:"highScore"`
	TotalScore     int64      `json:"totalScore"`
	LastPlayed     *time.Time `json:"lastPlayed"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// AverageScore is derived from the counters, never stored
func (p *Player) AverageScore() int64 {
	if p.GamesPlayed <= 0 {
		return 0
	}
	return int64(math.Round(float64(p.TotalScore) / float64(p.GamesPlayed)))
}

// MarshalJSON includes the derived averageScore in every serialized player
func (p Player) MarshalJSON() ([]byte, error) {
	type alias Player
	return json.Marshal(struct {
		alias
		AverageScore int64 `json:"averageScore"`
	}{alias(p), p.AverageScore()})
}

// PlayerSummary is the leaderboard projection of a player
type PlayerSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
	HighScore      int64  `json:"highScore"`
	GamesPlayed    int64  `json:"gamesPlayed"`
	TotalScore     int64  `json:"totalScore"`
}

// Summary returns the leaderboard projection of the player
func (p *Player) Summary() PlayerSummary {
	return PlayerSummary{
		ID:             p.ID,
		Name:           p.Name,
		Email:          p.Email,
		ProfilePicture: p.ProfilePicture,
		HighScore:      p.HighScore,
		GamesPlayed:    p.GamesPlayed,
		TotalScore:     p.TotalScore,
	}
}

// PlayerStats is a player's own statistics view
type PlayerStats struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	ProfilePicture string     `json:"profilePicture"`
	GamesPlayed    int64      `json:"gamesPlayed"`
	HighScore      int64      `json:"highScore"`
	TotalScore     int64      `json:"totalScore"`
	AverageScore   int64      `json:"averageScore"`
	LastPlayed     *time.Time `json:"lastPlayed"`
	MemberSince    time.Time  `json:"memberSince"`
}

// Stats returns the player's statistics view
func (p *Player) Stats() PlayerStats {
	return PlayerStats{
		Name:           p.Name,
		Email:          p.Email,
		ProfilePicture: p.ProfilePicture,
		GamesPlayed:    p.GamesPlayed,
		HighScore:      p.HighScore,
		TotalScore:     p.TotalScore,
		AverageScore:   p.AverageScore(),
		LastPlayed:     p.LastPlayed,
		MemberSince:    p.CreatedAt,
	}
}

// CreatePlayerRequest represents a player registration request
type CreatePlayerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Validate checks the registration fields and returns per-field errors.
// Name and email are trimmed and email lowercased in place.
func (r *CreatePlayerRequest) Validate() []FieldError {
	var errs []FieldError

	r.Name = strings.TrimSpace(r.Name)
	if n := len(r.Name); n < 2 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at least 2 characters"})
	} else if n > 50 {
		errs = append(errs, FieldError{Field: "name", Message: "name cannot exceed 50 characters"})
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !emailPattern.MatchString(r.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "please provide a valid email address"})
	}

	r.ProfilePicture = strings.TrimSpace(r.ProfilePicture)
	if r.ProfilePicture != "" && !validURI(r.ProfilePicture) {
		errs = append(errs, FieldError{Field: "profilePicture", Message: "profilePicture must be a valid URI"})
	}

	return errs
}

// UpdatePlayerRequest represents a partial profile update; nil fields are untouched
type UpdatePlayerRequest struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// Validate checks the fields that are present and returns per-field errors
func (r *UpdatePlayerRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if n := len(name); n < 2 {
			errs = append(errs, FieldError{Field: "name", Message: "name must be at least 2 characters"})
		} else if n > 50 {
			errs = append(errs, FieldError{Field: "name", Message: "name cannot exceed 50 characters"})
		}
		*r.Name = name
	}

	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		if !emailPattern.MatchString(email) {
			errs = append(errs, FieldError{Field: "email", Message: "please provide a valid email address"})
		}
		*r.Email = email
	}

	if r.ProfilePicture != nil {
		pic := strings.TrimSpace(*r.ProfilePicture)
		if pic != "" && !validURI(pic) {
			errs = append(errs, FieldError{Field: "profilePicture", Message: "profilePicture must be a valid URI"})
		}
		*r.ProfilePicture = pic
	}

	return errs
}

// Apply copies the present fields onto the player
func (r *UpdatePlayerRequest) Apply(p *Player) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Email != nil {
		p.Email = *r.Email
	}
	if r.ProfilePicture != nil {
		p.ProfilePicture = *r.ProfilePicture
	}
}

func validURI(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != ""
}
