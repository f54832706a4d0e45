package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/survival-kitchen/internal/sessions"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
	"github.com/jwebster45206/survival-kitchen/pkg/storage"
)

// CreateGameRequest starts a game. Catalog is a file under the catalogs
// directory; empty uses the server default.
type CreateGameRequest struct {
	Catalog string `json:"catalog,omitempty"`
	Seed    int64  `json:"seed,omitempty"`
}

// CreateGameResponse is the start response plus the seed that was used.
type CreateGameResponse struct {
	*state.Response
	Seed int64 `json:"seed"`
}

type ReloadCatalogRequest struct {
	Catalog string `json:"catalog"`
}

type MessagesResponse struct {
	Messages []string `json:"messages"`
}

// GamesHandler serves game lifecycle and command routes.
type GamesHandler struct {
	manager        *sessions.Manager
	storage        storage.Storage
	defaultCatalog *catalog.Catalog
	logger         *slog.Logger
}

func NewGamesHandler(manager *sessions.Manager, storage storage.Storage, defaultCatalog *catalog.Catalog, logger *slog.Logger) *GamesHandler {
	if defaultCatalog == nil {
		defaultCatalog = catalog.Default()
	}
	return &GamesHandler{
		manager:        manager,
		storage:        storage,
		defaultCatalog: defaultCatalog,
		logger:         logger,
	}
}

// decodeBody reads a JSON body. An empty body leaves v untouched when
// optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// catalogFor resolves a catalog file name, falling back to the default.
func (h *GamesHandler) catalogFor(r *http.Request, filename string) (*catalog.Catalog, error) {
	if filename == "" {
		return h.defaultCatalog, nil
	}
	return h.storage.GetCatalog(r.Context(), filename)
}

// Create handles POST /v1/games
func (h *GamesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.logger.Warn("Invalid create request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	cat, err := h.catalogFor(r, req.Catalog)
	if err != nil {
		h.logger.Warn("Catalog unavailable", "catalog", req.Catalog, "error", err)
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}

	resp, seed, err := h.manager.Create(r.Context(), cat, req.Seed)
	if err != nil {
		h.logger.Error("Failed to create game", "error", err)
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, CreateGameResponse{Response: resp, Seed: seed})
}

// Get handles GET /v1/games/{id}
func (h *GamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	gs, err := h.manager.Snapshot(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gs)
}

// Command handles POST /v1/games/{id}/commands
func (h *GamesHandler) Command(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	var cmd state.Command
	if err := decodeBody(r, &cmd, false); err != nil {
		h.logger.Warn("Invalid command body", "game_id", id, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if cmd.Type == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Command type is required")
		return
	}

	resp, err := h.manager.Execute(r.Context(), id, cmd)
	if err != nil {
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// Messages handles GET /v1/games/{id}/messages
func (h *GamesHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	msgs, err := h.manager.Messages(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}
	if msgs == nil {
		msgs = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, MessagesResponse{Messages: msgs})
}

// ReloadCatalog handles PUT /v1/games/{id}/catalog
func (h *GamesHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	var req ReloadCatalogRequest
	if err := decodeBody(r, &req, false); err != nil || req.Catalog == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Catalog file name is required")
		return
	}

	cat, err := h.storage.GetCatalog(r.Context(), req.Catalog)
	if err != nil {
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}

	gs, err := h.manager.ReloadCatalog(r.Context(), id, cat)
	if err != nil {
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}
	h.logger.Info("Catalog reloaded", "game_id", id, "catalog", req.Catalog)
	writeJSON(w, h.logger, http.StatusOK, gs)
}

// Delete handles DELETE /v1/games/{id}
func (h *GamesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	if err := h.manager.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sessions.ErrGameNotFound) {
			writeError(w, h.logger, http.StatusNotFound, err.Error())
			return
		}
		// The game is gone; only the cache cleanup failed.
		h.logger.Warn("Game deleted with cleanup errors", "game_id", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
