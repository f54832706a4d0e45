package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeCommandApplied   EventType = "command.applied"
	EventTypeCommandRejected  EventType = "command.rejected"
	EventTypeGameStateUpdated EventType = "game.state_updated"
	EventTypeGameFinished     EventType = "game.finished"
)

// Event represents a generic event structure
type Event struct {
	Type   EventType      `json:"type"`
	GameID string         `json:"game_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes game events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel is the Pub/Sub channel for a game
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// PublishCommandApplied publishes a command.applied event
func (b *Broadcaster) PublishCommandApplied(ctx context.Context, gameID uuid.UUID, cmd state.CommandType, messages []string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeCommandApplied,
		GameID: gameID.String(),
		Data: map[string]any{
			"command":  cmd,
			"messages": messages,
		},
	})
}

// PublishCommandRejected publishes a command.rejected event
func (b *Broadcaster) PublishCommandRejected(ctx context.Context, gameID uuid.UUID, cmd state.CommandType, errorMsg string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeCommandRejected,
		GameID: gameID.String(),
		Data: map[string]any{
			"command": cmd,
			"error":   errorMsg,
		},
	})
}

// PublishGameStateUpdated publishes a game.state_updated event, or
// game.finished once the game has an outcome
func (b *Broadcaster) PublishGameStateUpdated(ctx context.Context, gs *state.GameState) error {
	event := Event{
		Type:   EventTypeGameStateUpdated,
		GameID: gs.ID.String(),
		Data: map[string]any{
			"day":     gs.Progress.Day,
			"period":  gs.Progress.Period,
			"phase":   gs.Prompt.Phase,
			"outcome": gs.Progress.Outcome,
		},
	}
	if gs.IsOver() {
		event.Type = EventTypeGameFinished
	}
	return b.publishToGame(ctx, gs.ID, event)
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published", "channel", channel, "event_type", event.Type)
	return nil
}
