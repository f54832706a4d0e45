package state

import (
	"context"

	"github.com/google/uuid"
)

// MessageQueue defines the interface for publishing engine output to renderers
type MessageQueue interface {
	// Enqueue adds messages to the end of the queue for a game
	Enqueue(ctx context.Context, gameID uuid.UUID, messages ...string) error

	// Dequeue removes and returns all queued messages for a game
	Dequeue(ctx context.Context, gameID uuid.UUID) ([]string, error)

	// Clear removes all messages for a game
	Clear(ctx context.Context, gameID uuid.UUID) error
}
