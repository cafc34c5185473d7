package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
	"github.com/ShobhitTomer/blockblast-backend/internal/metrics"
	"github.com/ShobhitTomer/blockblast-backend/internal/service"
)

// Handler provides HTTP handlers for the leaderboard API
type Handler struct {
	players     *service.PlayerService
	scores      *service.ScoreService
	leaderboard *service.LeaderboardService
	logger      *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	players *service.PlayerService,
	scores *service.ScoreService,
	leaderboard *service.LeaderboardService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		players:     players,
		scores:      scores,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// APIResponse represents the standard response envelope
type APIResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       interface{}         `json:"data,omitempty"`
	Errors     []domain.FieldError `json:"errors,omitempty"`
	Count      *int                `json:"count,omitempty"`
	Pagination *domain.Pagination  `json:"pagination,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	}))

	r.Get("/", h.Index)
	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.ListPlayers)
			r.Post("/", h.CreatePlayer)
			r.Get("/email/{email}", h.GetPlayerByEmail)
			r.Route("/{playerID}", func(r chi.Router) {
				r.Get("/", h.GetPlayer)
				r.Put("/", h.UpdatePlayer)
				r.Delete("/", h.DeletePlayer)
				r.Get("/stats", h.GetPlayerStats)
			})
		})

		r.Route("/scores", func(r chi.Router) {
			r.Post("/", h.SubmitScore)
			r.Get("/", h.ListScores)
			r.Route("/player/{playerID}", func(r chi.Router) {
				r.Get("/", h.GetPlayerScores)
				r.Get("/recent", h.GetRecentScores)
				r.Get("/best", h.GetBestScores)
			})
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", h.GetLeaderboard)
			r.Get("/top", h.GetTopPlayers)
			r.Get("/rank/{playerID}", h.GetPlayerRank)
			r.Get("/stats", h.GetLeaderboardStats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, APIResponse{
			Success: false,
			Message: "Route not found",
		})
	})

	return r
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeData writes a successful response carrying only data
func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, APIResponse{Success: true, Data: data})
}

// writeList writes a successful response with a data set and its count
func (h *Handler) writeList(w http.ResponseWriter, data interface{}, count int) {
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data, Count: &count})
}

// writeError maps a service error to the response envelope
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		h.writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Validation error",
			Errors:  ve.Fields,
		})
		return
	}
	if errors.Is(err, domain.ErrDuplicateEmail) {
		h.writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Validation error",
			Errors:  []domain.FieldError{{Field: "email", Message: domain.ErrDuplicateEmail.Error()}},
		})
		return
	}
	if errors.Is(err, domain.ErrPlayerNotFound) {
		h.writeJSON(w, http.StatusNotFound, APIResponse{
			Success: false,
			Message: "Player not found",
		})
		return
	}
	if domain.IsNotFoundError(err) {
		h.writeJSON(w, http.StatusNotFound, APIResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	if errors.Is(err, domain.ErrInvalidRequest) {
		h.writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Message: domain.ErrInvalidRequest.Error(),
		})
		return
	}
	h.logger.Error("request failed", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, APIResponse{
		Success: false,
		Message: domain.ErrInternalError.Error(),
	})
}

// queryInt parses a positive integer query parameter, 0 when absent or invalid
func queryInt(r *http.Request, name string) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

// Index describes the API surface
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Welcome to Block Blast API",
		Data: map[string]interface{}{
			"version": "1.0.0",
			"endpoints": map[string]string{
				"players":     "/api/players",
				"scores":      "/api/scores",
				"leaderboard": "/api/leaderboard",
				"health":      "/health",
			},
		},
	})
}

// HealthCheck returns service liveness
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Block Blast API is running",
		Data: map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ListPlayers returns all players, newest first
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.players.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, players, len(players))
}

// CreatePlayer registers a new player
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidRequest)
		return
	}

	player, err := h.players.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Message: "Player created successfully",
		Data:    player,
	})
}

// GetPlayer returns one player by id
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.Get(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, player)
}

// GetPlayerByEmail returns one player by email
func (h *Handler) GetPlayerByEmail(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, player)
}

// UpdatePlayer applies a partial profile update
func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidRequest)
		return
	}

	player, err := h.players.Update(r.Context(), chi.URLParam(r, "playerID"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Player updated successfully",
		Data:    player,
	})
}

// DeletePlayer removes a player account
func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.players.Delete(r.Context(), chi.URLParam(r, "playerID")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Player deleted successfully",
		Data:    map[string]interface{}{},
	})
}

// GetPlayerStats returns a player's own statistics
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.players.Stats(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, stats)
}

// SubmitScore records a new score event
func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrInvalidRequest)
		return
	}

	result, err := h.scores.Submit(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Message: "Score submitted successfully",
		Data:    result,
	})
}

// ListScores returns the latest scores with player summaries joined
func (h *Handler) ListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scores.AllScores(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, scores, len(scores))
}

// GetPlayerScores returns a player's most recent scores
func (h *Handler) GetPlayerScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scores.PlayerScores(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, scores, len(scores))
}

// GetRecentScores returns a player's N most recent scores
func (h *Handler) GetRecentScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scores.RecentScores(r.Context(), chi.URLParam(r, "playerID"), queryInt(r, "limit"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, scores, len(scores))
}

// GetBestScores returns a player's N highest scores
func (h *Handler) GetBestScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scores.BestScores(r.Context(), chi.URLParam(r, "playerID"), queryInt(r, "limit"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, scores, len(scores))
}

// GetLeaderboard returns one page of the leaderboard
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	page, err := h.leaderboard.Page(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	count := len(page.Players)
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success:    true,
		Data:       page.Players,
		Count:      &count,
		Pagination: &page.Pagination,
	})
}

// GetTopPlayers returns the top N players
func (h *Handler) GetTopPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.leaderboard.TopPlayers(r.Context(), queryInt(r, "limit"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, players, len(players))
}

// GetPlayerRank returns a player's rank, percentile and neighbors
func (h *Handler) GetPlayerRank(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.leaderboard.PlayerRank(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, ranking)
}

// GetLeaderboardStats returns the global player and game totals
func (h *Handler) GetLeaderboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leaderboard.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, stats)
}
