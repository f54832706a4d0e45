package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/events"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
	"github.com/jwebster45206/survival-kitchen/pkg/storage"
)

var ErrGameNotFound = errors.New("game not found")

// commandStart labels the intro output of a new game.
const commandStart state.CommandType = "start"

// Publisher announces game changes to subscribers.
type Publisher interface {
	PublishCommandApplied(ctx context.Context, gameID uuid.UUID, cmd state.CommandType, messages []string) error
	PublishCommandRejected(ctx context.Context, gameID uuid.UUID, cmd state.CommandType, errorMsg string) error
	PublishGameStateUpdated(ctx context.Context, gs *state.GameState) error
}

type session struct {
	mu       sync.Mutex
	engine   *state.Engine
	seed     int64
	lastUsed time.Time
}

// Manager owns the live engines. Commands for one game run one at a time;
// different games run in parallel.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	store     storage.Storage
	queue     state.MessageQueue
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager creates a session manager. publisher may be nil.
func NewManager(store storage.Storage, queue state.MessageQueue, publisher Publisher, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:  make(map[uuid.UUID]*session),
		store:     store,
		queue:     queue,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create starts a new game. A zero seed picks a random one; the seed used is
// returned so the game can be replayed.
func (m *Manager) Create(ctx context.Context, cat *catalog.Catalog, seed int64) (*state.Response, int64, error) {
	if cat == nil {
		return nil, 0, errors.New("catalog is required")
	}
	for seed == 0 {
		seed = rand.Int64()
	}

	engine := state.NewEngine(cat, events.NewRand(seed), m.logger)
	resp, err := engine.Start()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to start game: %w", err)
	}

	m.mu.Lock()
	m.sessions[engine.ID()] = &session{engine: engine, seed: seed, lastUsed: m.now()}
	m.mu.Unlock()

	m.logger.Info("Game created", "game_id", engine.ID(), "catalog", cat.Name, "seed", seed)
	m.publish(ctx, commandStart, resp)
	return resp, seed, nil
}

func (m *Manager) get(id uuid.UUID) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return s, nil
}

// Execute applies a command to a game.
func (m *Manager) Execute(ctx context.Context, id uuid.UUID, cmd state.Command) (*state.Response, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = m.now()

	resp, err := s.engine.Execute(cmd)
	if err != nil {
		m.logger.Debug("Command rejected", "game_id", id, "command", cmd.Type, "error", err)
		if m.publisher != nil {
			if perr := m.publisher.PublishCommandRejected(ctx, id, cmd.Type, err.Error()); perr != nil {
				m.logger.Warn("Failed to publish rejection", "game_id", id, "error", perr)
			}
		}
		return nil, err
	}
	m.publish(ctx, cmd.Type, resp)
	return resp, nil
}

// ReloadCatalog swaps the catalog of a running game between commands.
func (m *Manager) ReloadCatalog(ctx context.Context, id uuid.UUID, cat *catalog.Catalog) (*state.GameState, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = m.now()

	if err := s.engine.ReloadCatalog(cat); err != nil {
		return nil, err
	}
	gs := s.engine.Snapshot()
	if err := m.store.SaveGameState(ctx, id, gs); err != nil {
		m.logger.Warn("Failed to cache snapshot", "game_id", id, "error", err)
	}
	return gs, nil
}

// Snapshot returns the latest state of a game, preferring the Redis cache.
func (m *Manager) Snapshot(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	gs, err := m.store.LoadGameState(ctx, id)
	if err != nil {
		m.logger.Warn("Snapshot cache unavailable", "game_id", id, "error", err)
	}
	if gs != nil {
		return gs, nil
	}

	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(), nil
}

// Exists reports whether a game is live.
func (m *Manager) Exists(id uuid.UUID) bool {
	_, err := m.get(id)
	return err == nil
}

// Seed returns the seed a live game was created with.
func (m *Manager) Seed(id uuid.UUID) (int64, error) {
	s, err := m.get(id)
	if err != nil {
		return 0, err
	}
	return s.seed, nil
}

// Messages drains the queued messages of a game.
func (m *Manager) Messages(ctx context.Context, id uuid.UUID) ([]string, error) {
	if _, err := m.get(id); err != nil {
		return nil, err
	}
	return m.queue.Dequeue(ctx, id)
}

// Delete ends a game and drops its cached state.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	err := errors.Join(m.store.DeleteGameState(ctx, id), m.queue.Clear(ctx, id))
	m.logger.Info("Game deleted", "game_id", id)
	return err
}

// EvictIdle drops games with no command for longer than maxIdle and
// returns their ids. Their snapshots are left to expire on their own.
func (m *Manager) EvictIdle(ctx context.Context, maxIdle time.Duration) []uuid.UUID {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	var evicted []uuid.UUID
	for id, s := range m.sessions {
		if !s.mu.TryLock() {
			continue // busy, so not idle
		}
		if s.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
		s.mu.Unlock()
	}
	m.mu.Unlock()

	for _, id := range evicted {
		if err := m.queue.Clear(ctx, id); err != nil {
			m.logger.Warn("Failed to clear messages of idle game", "game_id", id, "error", err)
		}
		m.logger.Info("Idle game evicted", "game_id", id)
	}
	return evicted
}

// Len is the number of live games.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// publish caches the snapshot, queues the messages and broadcasts the
// change. Failures are logged; the command has already been applied.
func (m *Manager) publish(ctx context.Context, cmd state.CommandType, resp *state.Response) {
	gs := resp.State
	if err := m.store.SaveGameState(ctx, gs.ID, gs); err != nil {
		m.logger.Warn("Failed to cache snapshot", "game_id", gs.ID, "error", err)
	}

	out := make([]string, 0, len(resp.Interlude)+len(resp.Messages))
	out = append(out, resp.Interlude...)
	out = append(out, resp.Messages...)
	if err := m.queue.Enqueue(ctx, gs.ID, out...); err != nil {
		m.logger.Warn("Failed to queue messages", "game_id", gs.ID, "error", err)
	}

	if m.publisher == nil {
		return
	}
	if err := m.publisher.PublishCommandApplied(ctx, gs.ID, cmd, resp.Messages); err != nil {
		m.logger.Warn("Failed to publish command", "game_id", gs.ID, "error", err)
	}
	if err := m.publisher.PublishGameStateUpdated(ctx, gs); err != nil {
		m.logger.Warn("Failed to publish state", "game_id", gs.ID, "error", err)
	}
}
