package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
	"github.com/redis/go-redis/v9"
)

// MessageQueue buffers engine messages per game until a renderer drains them
type MessageQueue struct {
	client *Client
	ttl    time.Duration
}

var _ state.MessageQueue = (*MessageQueue)(nil)

// NewMessageQueue creates a queue whose per-game lists expire after ttl of
// inactivity. A zero ttl keeps them forever.
func NewMessageQueue(client *Client, ttl time.Duration) *MessageQueue {
	return &MessageQueue{
		client: client,
		ttl:    ttl,
	}
}

func queueKey(gameID uuid.UUID) string {
	return fmt.Sprintf("game-messages:%s", gameID.String())
}

// Enqueue adds messages to the end of the queue for a game
func (mq *MessageQueue) Enqueue(ctx context.Context, gameID uuid.UUID, messages ...string) error {
	if len(messages) == 0 {
		return nil
	}
	key := queueKey(gameID)
	values := make([]any, len(messages))
	for i, m := range messages {
		values[i] = m
	}

	_, err := mq.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if mq.ttl > 0 {
			pipe.Expire(ctx, key, mq.ttl)
		}
		return nil
	})
	if err != nil {
		mq.client.logger.Error("Failed to enqueue messages", "error", err, "game_id", gameID, "key", key)
		return fmt.Errorf("failed to enqueue messages: %w", err)
	}
	return nil
}

// Dequeue removes and returns all queued messages for a game
func (mq *MessageQueue) Dequeue(ctx context.Context, gameID uuid.UUID) ([]string, error) {
	key := queueKey(gameID)

	var lrange *redis.StringSliceCmd
	_, err := mq.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to dequeue messages: %w", err)
	}
	return lrange.Val(), nil
}

// Peek returns up to limit messages without removing them. A limit of zero
// or less returns all of them.
func (mq *MessageQueue) Peek(ctx context.Context, gameID uuid.UUID, limit int) ([]string, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}
	messages, err := mq.client.rdb.LRange(ctx, queueKey(gameID), 0, end).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to peek messages: %w", err)
	}
	return messages, nil
}

// Clear removes all messages for a game
func (mq *MessageQueue) Clear(ctx context.Context, gameID uuid.UUID) error {
	if err := mq.client.rdb.Del(ctx, queueKey(gameID)).Err(); err != nil {
		return fmt.Errorf("failed to clear message queue: %w", err)
	}
	return nil
}

// Depth returns the number of messages queued for a game
func (mq *MessageQueue) Depth(ctx context.Context, gameID uuid.UUID) (int, error) {
	count, err := mq.client.rdb.LLen(ctx, queueKey(gameID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
