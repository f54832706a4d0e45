package main

import (
	"context"
	"log/slog"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/events"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
)

// Game is what the console drives: an engine in this process or a game
// hosted by the API.
type Game interface {
	Start(ctx context.Context) (*state.Response, error)
	Execute(ctx context.Context, cmd state.Command) (*state.Response, error)
	// Catalog is used to parse typed commands.
	Catalog() *catalog.Catalog
}

type localGame struct {
	engine *state.Engine
}

func newLocalGame(cat *catalog.Catalog, seed int64, logger *slog.Logger) *localGame {
	return &localGame{engine: state.NewEngine(cat, events.NewRand(seed), logger)}
}

func (g *localGame) Start(ctx context.Context) (*state.Response, error) {
	return g.engine.Start()
}

func (g *localGame) Execute(ctx context.Context, cmd state.Command) (*state.Response, error) {
	return g.engine.Execute(cmd)
}

func (g *localGame) Catalog() *catalog.Catalog {
	return g.engine.Catalog()
}
