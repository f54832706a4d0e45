package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/survival-kitchen/internal/middleware"
	"github.com/jwebster45206/survival-kitchen/internal/services/events"
	"github.com/jwebster45206/survival-kitchen/internal/services/queue"
	"github.com/jwebster45206/survival-kitchen/internal/sessions"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
	"github.com/jwebster45206/survival-kitchen/pkg/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietCatalog() *catalog.Catalog {
	c := catalog.Default()
	c.RandomEvents = nil
	c.FixedEvents = nil
	c.ConditionalEvents = nil
	return c
}

type testAPI struct {
	handler http.Handler
	store   *storage.MockStorage
	manager *sessions.Manager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMockStorage()
	mq := queue.NewMessageQueue(queue.NewClientFrom(rdb, logger), time.Hour)
	manager := sessions.NewManager(store, mq, events.NewBroadcaster(rdb, logger), logger)

	return &testAPI{
		handler: NewRouter(RouterConfig{
			Manager:        manager,
			Storage:        store,
			Redis:          rdb,
			DefaultCatalog: quietCatalog(),
			RateLimiter:    middleware.NewRateLimiter(0, 0),
			Logger:         logger,
		}),
		store:   store,
		manager: manager,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func (a *testAPI) create(t *testing.T) CreateGameResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/games", CreateGameRequest{Seed: 7})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp CreateGameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Response)
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e.Error
}

func TestCreateGame(t *testing.T) {
	api := newTestAPI(t)
	resp := api.create(t)

	assert.Equal(t, int64(7), resp.Seed)
	assert.Equal(t, 1, resp.State.Progress.Day)
	assert.Equal(t, catalog.PeriodMorning, resp.State.Progress.Period)
	assert.Equal(t, state.PhaseContinue, resp.State.Prompt.Phase)
	assert.NotEmpty(t, resp.Interlude)
	assert.Equal(t, 1, api.manager.Len())
}

func TestCreateGame_Errors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/games", CreateGameRequest{Catalog: "missing.yaml"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/games", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// An empty body starts a game on the default catalog.
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/games", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateGame_NamedCatalog(t *testing.T) {
	api := newTestAPI(t)
	winter := quietCatalog()
	winter.Name = "Winter Term"
	api.store.AddCatalog("winter.yaml", winter)

	rec := api.do(t, http.MethodPost, "/v1/games", CreateGameRequest{Catalog: "winter.yaml"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateGameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Winter Term", resp.State.CatalogName)
	assert.NotZero(t, resp.Seed)
}

func TestCommands(t *testing.T) {
	api := newTestAPI(t)
	game := api.create(t)
	base := "/v1/games/" + game.State.ID.String()

	// Morning summary, then the daytime page, then shopping.
	for range 2 {
		rec := api.do(t, http.MethodPost, base+"/commands", state.Command{Type: state.CmdAdvance})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	var snap state.GameState
	rec := api.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, state.PhaseLocation, snap.Prompt.Phase)

	tests := []struct {
		name   string
		cmd    any
		status int
	}{
		{"wrong phase", state.Command{Type: state.CmdCook, Recipe: "Boiled Noodles"}, http.StatusConflict},
		{"unknown location", state.Command{Type: state.CmdSelectLocation, Location: "Mall"}, http.StatusUnprocessableEntity},
		{"unknown command", state.Command{Type: "dance"}, http.StatusBadRequest},
		{"missing type", map[string]string{}, http.StatusBadRequest},
		{"unknown field", map[string]string{"type": "advance", "speed": "fast"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, base+"/commands", tt.cmd)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}

	rec = api.do(t, http.MethodPost, base+"/commands", state.Command{Type: state.CmdSelectLocation, Location: "Market"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp state.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, state.PhaseShopping, resp.State.Prompt.Phase)
	assert.Equal(t, "Market", resp.State.Prompt.Location)
}

func TestMessages(t *testing.T) {
	api := newTestAPI(t)
	game := api.create(t)
	path := "/v1/games/" + game.State.ID.String() + "/messages"

	rec := api.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var first MessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, len(game.Interlude)+len(game.Messages), len(first.Messages))

	rec = api.do(t, http.MethodGet, path, nil)
	var second MessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.NotNil(t, second.Messages)
	assert.Empty(t, second.Messages)
}

func TestReloadCatalog(t *testing.T) {
	api := newTestAPI(t)
	game := api.create(t)
	path := "/v1/games/" + game.State.ID.String() + "/catalog"

	spring := quietCatalog()
	spring.Name = "Spring Term"
	api.store.AddCatalog("spring.json", spring)

	rec := api.do(t, http.MethodPut, path, ReloadCatalogRequest{Catalog: "spring.json"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var gs state.GameState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gs))
	assert.Equal(t, "Spring Term", gs.CatalogName)

	rec = api.do(t, http.MethodPut, path, ReloadCatalogRequest{Catalog: "autumn.json"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPut, path, ReloadCatalogRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteGame(t *testing.T) {
	api := newTestAPI(t)
	game := api.create(t)
	path := "/v1/games/" + game.State.ID.String()

	rec := api.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, path+"/commands", state.Command{Type: state.CmdAdvance})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidGameID(t *testing.T) {
	api := newTestAPI(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/games/not-a-uuid"},
		{http.MethodDelete, "/v1/games/not-a-uuid"},
		{http.MethodGet, "/v1/games/not-a-uuid/messages"},
		{http.MethodGet, "/v1/games/not-a-uuid/events"},
	} {
		rec := api.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
	}
}

func TestListCatalogs(t *testing.T) {
	api := newTestAPI(t)
	api.store.AddCatalog("b.yaml", &catalog.Catalog{Name: "B"})
	api.store.AddCatalog("a.yaml", &catalog.Catalog{Name: "A"})

	rec := api.do(t, http.MethodGet, "/v1/catalogs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []CatalogInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []CatalogInfo{{Name: "A", Filename: "a.yaml"}, {Name: "B", Filename: "b.yaml"}}, list)
}

func TestEventsStream(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.handler)
	defer srv.Close()

	game := api.create(t)
	base := "/v1/games/" + game.State.ID.String()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+base+"/events", nil)
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	reader := bufio.NewReader(res.Body)
	nextEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if name, ok := strings.CutPrefix(strings.TrimSpace(line), "event: "); ok {
				return name
			}
		}
	}

	require.Equal(t, "connected", nextEvent())

	rec := api.do(t, http.MethodPost, base+"/commands", state.Command{Type: state.CmdAdvance})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(events.EventTypeCommandApplied), nextEvent())
	assert.Equal(t, string(events.EventTypeGameStateUpdated), nextEvent())

	rec = api.do(t, http.MethodPost, base+"/commands", state.Command{Type: state.CmdCook, Recipe: "Boiled Noodles"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(events.EventTypeCommandRejected), nextEvent())
}

func TestEventsStream_UnknownGame(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/v1/games/00000000-0000-0000-0000-000000000001/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
