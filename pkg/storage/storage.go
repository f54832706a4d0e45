package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
)

var ErrCatalogNotFound = errors.New("catalog not found")

// Storage defines a unified interface for all storage operations
// This interface combines game snapshots (Redis) with catalog loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Snapshot operations (Redis-backed). Load returns nil, nil when the
	// snapshot is missing or expired.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// Catalog operations (filesystem-backed)
	// ListCatalogs maps catalog names to file names.
	ListCatalogs(ctx context.Context) (map[string]string, error)
	GetCatalog(ctx context.Context, filename string) (*catalog.Catalog, error)
}
