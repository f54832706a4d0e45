package queue

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	redisURL := "redis://" + mr.Addr()

	client, err := NewClient(redisURL, logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	return client, mr
}

func TestNewClient_Unreachable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	if _, err := NewClient("::bad::", logger); err == nil {
		t.Fatal("Expected error for malformed URL")
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()
	if _, err := NewClient("redis://"+addr, logger); err == nil {
		t.Fatal("Expected error when redis is down")
	}
}

func TestMessageQueue_EnqueueAndDequeue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	mq := NewMessageQueue(client, time.Hour)
	ctx := context.Background()
	gameID := uuid.New()

	if err := mq.Enqueue(ctx, gameID, "Satiety +30", "Stamina -5"); err != nil {
		t.Fatalf("Failed to enqueue: %v", err)
	}
	if err := mq.Enqueue(ctx, gameID, "Good night! (Early Sleep)"); err != nil {
		t.Fatalf("Failed to enqueue: %v", err)
	}

	depth, err := mq.Depth(ctx, gameID)
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != 3 {
		t.Errorf("Expected depth 3, got %d", depth)
	}

	got, err := mq.Dequeue(ctx, gameID)
	if err != nil {
		t.Fatalf("Failed to dequeue: %v", err)
	}
	want := []string{"Satiety +30", "Stamina -5", "Good night! (Early Sleep)"}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got, err = mq.Dequeue(ctx, gameID)
	if err != nil {
		t.Fatalf("Failed to dequeue empty queue: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty queue after dequeue, got %v", got)
	}
}

func TestMessageQueue_EnqueueNothing(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	mq := NewMessageQueue(client, time.Hour)
	gameID := uuid.New()
	if err := mq.Enqueue(context.Background(), gameID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mr.Exists(queueKey(gameID)) {
		t.Error("Expected no key for an empty enqueue")
	}
}

func TestMessageQueue_TTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	mq := NewMessageQueue(client, 10*time.Minute)
	ctx := context.Background()
	gameID := uuid.New()

	if err := mq.Enqueue(ctx, gameID, "Money -$15"); err != nil {
		t.Fatalf("Failed to enqueue: %v", err)
	}
	if ttl := mr.TTL(queueKey(gameID)); ttl != 10*time.Minute {
		t.Errorf("Expected TTL 10m, got %v", ttl)
	}

	mr.FastForward(11 * time.Minute)
	got, err := mq.Dequeue(ctx, gameID)
	if err != nil {
		t.Fatalf("Failed to dequeue: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected expired queue to be empty, got %v", got)
	}
}

func TestMessageQueue_PeekAndClear(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	mq := NewMessageQueue(client, 0)
	ctx := context.Background()
	gameID := uuid.New()
	other := uuid.New()

	_ = mq.Enqueue(ctx, gameID, "a", "b", "c")
	_ = mq.Enqueue(ctx, other, "x")

	peeked, err := mq.Peek(ctx, gameID, 2)
	if err != nil {
		t.Fatalf("Failed to peek: %v", err)
	}
	if !slices.Equal(peeked, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", peeked)
	}
	all, _ := mq.Peek(ctx, gameID, 0)
	if len(all) != 3 {
		t.Errorf("Expected peek to keep all 3 messages, got %d", len(all))
	}

	if err := mq.Clear(ctx, gameID); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	if depth, _ := mq.Depth(ctx, gameID); depth != 0 {
		t.Errorf("Expected empty queue after clear, got %d", depth)
	}
	if depth, _ := mq.Depth(ctx, other); depth != 1 {
		t.Errorf("Expected other game's queue untouched, got %d", depth)
	}
}

func TestClient_BorrowedConnectionStaysOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	client := NewClientFrom(rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := client.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Errorf("Expected borrowed connection to stay open, got %v", err)
	}
}
