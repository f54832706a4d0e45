package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const minInterval = time.Second

// Evictor drops games that have gone quiet.
type Evictor interface {
	EvictIdle(ctx context.Context, maxIdle time.Duration) []uuid.UUID
}

// Reaper periodically evicts idle games from memory
type Reaper struct {
	id       string
	games    Evictor
	maxIdle  time.Duration
	interval time.Duration
	log      *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a reaper that evicts games idle for longer than maxIdle.
// It sweeps four times per maxIdle, and at most once per second.
func New(games Evictor, maxIdle time.Duration, log *slog.Logger, workerID string) *Reaper {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("reaper-%s", uuid.New().String()[:8])
	}

	return &Reaper{
		id:       workerID,
		games:    games,
		maxIdle:  maxIdle,
		interval: max(maxIdle/4, minInterval),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start sweeps until Stop is called
func (r *Reaper) Start() error {
	r.log.Info("Reaper starting", "worker_id", r.id, "max_idle", r.maxIdle.String(), "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			r.log.Info("Reaper shutting down", "worker_id", r.id)
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep runs one eviction pass and returns the number of games dropped
func (r *Reaper) Sweep() int {
	evicted := r.games.EvictIdle(r.ctx, r.maxIdle)
	if len(evicted) > 0 {
		r.log.Info("Evicted idle games", "worker_id", r.id, "count", len(evicted))
	}
	return len(evicted)
}

// Stop gracefully shuts down the reaper
func (r *Reaper) Stop() {
	r.log.Info("Reaper stop requested", "worker_id", r.id)
	r.cancel()
}
