package sessions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/internal/services/queue"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
	"github.com/jwebster45206/survival-kitchen/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	applied  []state.CommandType
	rejected []string
	updates  int
}

func (p *recordingPublisher) PublishCommandApplied(ctx context.Context, gameID uuid.UUID, cmd state.CommandType, messages []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applied = append(p.applied, cmd)
	return nil
}

func (p *recordingPublisher) PublishCommandRejected(ctx context.Context, gameID uuid.UUID, cmd state.CommandType, errorMsg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejected = append(p.rejected, errorMsg)
	return nil
}

func (p *recordingPublisher) PublishGameStateUpdated(ctx context.Context, gs *state.GameState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	return nil
}

func newManager(t *testing.T) (*Manager, *storage.MockStorage, *recordingPublisher) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := queue.NewClient("redis://"+mr.Addr(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := storage.NewMockStorage()
	pub := &recordingPublisher{}
	return NewManager(store, queue.NewMessageQueue(client, time.Hour), pub, logger), store, pub
}

func TestManager_CreateAndExecute(t *testing.T) {
	m, store, pub := newManager(t)
	ctx := context.Background()
	cat := catalog.Default()

	resp, seed, err := m.Create(ctx, cat, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), seed)
	id := resp.State.ID
	assert.Equal(t, 1, m.Len())

	cached, err := store.LoadGameState(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, resp.State.Progress, cached.Progress)

	msgs, err := m.Messages(ctx, id)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(msgs), len(cat.Intro))
	assert.Equal(t, cat.Intro, msgs[:len(cat.Intro)], "intro pages come first")

	msgs, err = m.Messages(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, msgs, "messages are drained")

	_, err = m.Execute(ctx, id, state.Command{Type: state.CmdCook, Recipe: "Boiled Noodles"})
	assert.ErrorIs(t, err, state.ErrUnexpectedCommand)
	assert.Len(t, pub.rejected, 1)

	// The morning may hold an event choice depending on the draw.
	gs, err := m.Snapshot(ctx, id)
	require.NoError(t, err)
	cmd := state.Command{Type: state.CmdAdvance}
	if gs.Prompt.Phase == state.PhaseEventChoice {
		cmd = state.Command{Type: state.CmdChooseOption, OptionID: gs.Prompt.Choices[0].ID}
	}
	resp, err = m.Execute(ctx, id, cmd)
	require.NoError(t, err)

	gs, err = m.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, resp.State.Prompt, gs.Prompt)
	assert.Equal(t, []state.CommandType{commandStart, cmd.Type}, pub.applied)
	assert.Equal(t, 2, pub.updates)
}

func TestManager_RandomSeed(t *testing.T) {
	m, _, _ := newManager(t)
	resp, seed, err := m.Create(context.Background(), catalog.Default(), 0)
	require.NoError(t, err)
	assert.NotZero(t, seed)

	got, err := m.Seed(resp.State.ID)
	require.NoError(t, err)
	assert.Equal(t, seed, got)
}

func TestManager_UnknownGame(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := m.Execute(ctx, id, state.Command{Type: state.CmdAdvance})
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = m.Snapshot(ctx, id)
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = m.Messages(ctx, id)
	assert.ErrorIs(t, err, ErrGameNotFound)
	assert.ErrorIs(t, m.Delete(ctx, id), ErrGameNotFound)
	_, err = m.ReloadCatalog(ctx, id, catalog.Default())
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestManager_Delete(t *testing.T) {
	m, store, _ := newManager(t)
	ctx := context.Background()
	resp, _, err := m.Create(ctx, catalog.Default(), 1)
	require.NoError(t, err)
	id := resp.State.ID

	require.NoError(t, m.Delete(ctx, id))
	assert.Equal(t, 0, m.Len())
	cached, err := store.LoadGameState(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestManager_ReloadCatalog(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()
	resp, _, err := m.Create(ctx, catalog.Default(), 1)
	require.NoError(t, err)

	other := catalog.Default()
	other.Name = "Reloaded"
	gs, err := m.ReloadCatalog(ctx, resp.State.ID, other)
	require.NoError(t, err)
	assert.Equal(t, "Reloaded", gs.CatalogName)
}

func TestManager_SnapshotFallsBackToEngine(t *testing.T) {
	m, store, _ := newManager(t)
	ctx := context.Background()
	resp, _, err := m.Create(ctx, catalog.Default(), 1)
	require.NoError(t, err)
	require.NoError(t, store.DeleteGameState(ctx, resp.State.ID))

	gs, err := m.Snapshot(ctx, resp.State.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.State.ID, gs.ID)
}

func TestManager_ConcurrentCommands(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()
	cat := catalog.Default()
	cat.RandomEvents = nil
	cat.FixedEvents = nil
	cat.ConditionalEvents = nil
	resp, _, err := m.Create(ctx, cat, 1)
	require.NoError(t, err)
	id := resp.State.ID

	var wg sync.WaitGroup
	var okCount, phaseErrs int
	var mu sync.Mutex
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Execute(ctx, id, state.Command{Type: state.CmdAdvance})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				okCount++
			case errors.Is(err, state.ErrUnexpectedCommand):
				phaseErrs++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// Morning -> daytime -> location; the location prompt also accepts
	// advance (skip), then cooking accepts it too, then the evening does not.
	assert.Equal(t, 4, okCount)
	assert.Equal(t, 4, phaseErrs)
}

func TestManager_EvictIdle(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()
	now := time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stale, _, err := m.Create(ctx, catalog.Default(), 1)
	require.NoError(t, err)
	now = now.Add(50 * time.Minute)
	fresh, _, err := m.Create(ctx, catalog.Default(), 2)
	require.NoError(t, err)
	now = now.Add(20 * time.Minute)

	evicted := m.EvictIdle(ctx, time.Hour)
	assert.Equal(t, []uuid.UUID{stale.State.ID}, evicted)
	assert.False(t, m.Exists(stale.State.ID))
	assert.True(t, m.Exists(fresh.State.ID))

	_, err = m.Execute(ctx, stale.State.ID, state.Command{Type: state.CmdAdvance})
	assert.ErrorIs(t, err, ErrGameNotFound)
	assert.Empty(t, m.EvictIdle(ctx, time.Hour))
}
