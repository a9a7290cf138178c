// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quattroplay/quattro/internal/models"
)

// DefaultQueueName is the Redis list (queue) finished-game summaries are
// pushed onto. The historian service drains it into Postgres.
const DefaultQueueName = "quattro_results"

// QueueSink publishes finished-game summaries onto a Redis list. It is the
// production result sink: the game server fires summaries at it and never
// waits on, or learns about, downstream persistence.
type QueueSink struct {
	client *redis.Client
	queue  string
}

// Connect initializes a Redis-backed sink from environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
//   - RESULT_QUEUE_NAME (optional, default DefaultQueueName)
func Connect() (*QueueSink, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return NewQueueSink(client, getEnv("RESULT_QUEUE_NAME", DefaultQueueName)), nil
}

// NewQueueSink wraps an existing client, mainly for tests.
func NewQueueSink(client *redis.Client, queue string) *QueueSink {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &QueueSink{client: client, queue: queue}
}

// Publish serializes the summary and pushes it onto the queue. Beyond a
// quick network send this never blocks gameplay.
func (s *QueueSink) Publish(ctx context.Context, result models.GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal game result: %w", err)
	}
	if err := s.client.RPush(ctx, s.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", s.queue, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
