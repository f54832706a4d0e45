package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// Client is the Redis connection used by the message queue. A client built
// with NewClient owns its connection; one built with NewClientFrom borrows
// it and Close leaves it open.
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
	owned  bool
}

// NewClient dials redisURL and checks the connection
func NewClient(redisURL string, logger *slog.Logger) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opt.Addr, err)
	}

	logger.Info("Message queue connected to Redis", "addr", opt.Addr)
	return &Client{rdb: rdb, logger: logger, owned: true}, nil
}

// NewClientFrom shares a connection, e.g. the one owned by storage
func NewClientFrom(rdb *redis.Client, logger *slog.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// Close closes the connection if this client opened it
func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.rdb.Close()
}
