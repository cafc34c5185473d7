package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ShobhitTomer/blockblast-backend/internal/config"
	"github.com/ShobhitTomer/blockblast-backend/internal/domain"
	"github.com/ShobhitTomer/blockblast-backend/internal/postgres"
)

// PlayerCounterStore is the slice of the player store the reconciler needs
type PlayerCounterStore interface {
	List(ctx context.Context) ([]domain.Player, error)
	SetCounters(ctx context.Context, playerID string, gamesPlayed, totalScore, highScore int64) error
}

// ScoreAggregateStore computes per-player totals from the score log
type ScoreAggregateStore interface {
	Aggregates(ctx context.Context) (map[string]postgres.PlayerAggregate, error)
}

// Reconciler periodically verifies that every player's incrementally
// maintained counters match the aggregates of their score records. Score
// ingestion writes two records without a cross-record transaction, so a
// crash between the writes leaves a divergence this worker surfaces.
type Reconciler struct {
	players PlayerCounterStore
	scores  ScoreAggregateStore
	config  *config.ReconcileConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewReconciler creates a new reconciliation worker
func NewReconciler(
	players PlayerCounterStore,
	scores ScoreAggregateStore,
	cfg *config.ReconcileConfig,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		players: players,
		scores:  scores,
		config:  cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins the background reconciliation loop
func (w *Reconciler) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("reconciliation worker started", "interval", w.config.Interval, "repair", w.config.Repair)

	go w.run(ctx)
	return nil
}

// Stop stops the background loop
func (w *Reconciler) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("reconciliation worker stopped")
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *Reconciler) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Reconciler) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single reconciliation pass
func (w *Reconciler) RunOnce(ctx context.Context) {
	start := time.Now()

	players, err := w.players.List(ctx)
	if err != nil {
		w.logger.Error("failed to list players for reconciliation", "error", err)
		return
	}

	aggregates, err := w.scores.Aggregates(ctx)
	if err != nil {
		w.logger.Error("failed to aggregate scores for reconciliation", "error", err)
		return
	}

	divergedCount := 0
	repairedCount := 0

	for i := range players {
		p := &players[i]
		agg := aggregates[p.ID]

		if p.GamesPlayed == agg.GamesPlayed && p.TotalScore == agg.TotalScore && p.HighScore == agg.HighScore {
			continue
		}

		divergedCount++
		w.logger.Warn("player counters diverged from score log",
			"player_id", p.ID,
			"games_played", p.GamesPlayed,
			"games_played_actual", agg.GamesPlayed,
			"total_score", p.TotalScore,
			"total_score_actual", agg.TotalScore,
			"high_score", p.HighScore,
			"high_score_actual", agg.HighScore,
		)

		if !w.config.Repair {
			continue
		}
		if err := w.players.SetCounters(ctx, p.ID, agg.GamesPlayed, agg.TotalScore, agg.HighScore); err != nil {
			w.logger.Error("failed to repair player counters", "player_id", p.ID, "error", err)
			continue
		}
		repairedCount++
	}

	w.logger.Info("reconciliation pass completed",
		"duration", time.Since(start),
		"players", len(players),
		"diverged", divergedCount,
		"repaired", repairedCount,
	)
}
