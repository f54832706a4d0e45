package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/internal/sessions"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/events"
	"github.com/jwebster45206/survival-kitchen/pkg/kitchen"
	"github.com/jwebster45206/survival-kitchen/pkg/market"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
	"github.com/jwebster45206/survival-kitchen/pkg/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// statusFor maps engine and storage errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sessions.ErrGameNotFound),
		errors.Is(err, storage.ErrCatalogNotFound):
		return http.StatusNotFound
	case errors.Is(err, state.ErrUnexpectedCommand),
		errors.Is(err, state.ErrGameOver),
		errors.Is(err, state.ErrNotStarted),
		errors.Is(err, state.ErrAlreadyStarted):
		return http.StatusConflict
	case errors.Is(err, market.ErrInsufficientFunds),
		errors.Is(err, market.ErrUnknownItem),
		errors.Is(err, market.ErrUnknownLocation),
		errors.Is(err, market.ErrInvalidQuantity),
		errors.Is(err, kitchen.ErrInsufficientStamina),
		errors.Is(err, kitchen.ErrInsufficientIngredients),
		errors.Is(err, state.ErrUnknownRecipe),
		errors.Is(err, state.ErrUnknownActivity),
		errors.Is(err, events.ErrInvalidChoice),
		errors.Is(err, catalog.ErrInvalidCatalog):
		return http.StatusUnprocessableEntity
	case errors.Is(err, state.ErrUnknownCommand):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// gameID reads the {id} route parameter.
func gameID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
