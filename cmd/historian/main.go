// cmd/historian/main.go is an asynchronous historian service that pops
// finished-game summaries from the Redis result queue and persists them to
// PostgreSQL. It is the durable half of the result sink; the game server
// never waits on it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/quattroplay/quattro/internal/database"
	"github.com/quattroplay/quattro/internal/models"
)

// HistorianService encapsulates the Redis + DB logic for draining the
// result queue in small batches.
type HistorianService struct {
	redisClient *redis.Client
	queueName   string
	batchSize   int
	flushDelay  time.Duration

	batchMu  sync.Mutex
	batch    []models.GameResult
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment
// variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)

	rdb := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		DB:   getEnvInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		queueName:   getEnv("RESULT_QUEUE_NAME", "quattro_results"),
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		batch:       make([]models.GameResult, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects to the database, starts the queue drain loop, and blocks
// until shutdown.
func (hs *HistorianService) Run() {
	// Unlike the game server, the historian exists only to persist, so a
	// missing database is fatal here.
	if err := database.ConnectDB(); err != nil {
		log.Fatalf("historian requires Postgres: %v", err)
	}

	go hs.readRedisLoop()

	log.Println("quattro-historian service started.")
	<-hs.ctx.Done()
	hs.flushBatchToDB()
	log.Println("quattro-historian shutting down.")
}

// Stop cancels the service context.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

// readRedisLoop continuously uses BLPop to retrieve summaries from the
// queue, flushing the accumulated batch on a timer.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// BLPop with a short timeout so context cancellation is noticed.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, hs.queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if hs.ctx.Err() != nil {
					return
				}
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var result models.GameResult
			if err := json.Unmarshal([]byte(res[1]), &result); err != nil {
				log.Printf("invalid game result record: %v\n", err)
				continue
			}
			hs.appendToBatch(result)
		}
	}
}

// appendToBatch adds a summary to the in-memory batch and flushes once the
// threshold is reached.
func (hs *HistorianService) appendToBatch(result models.GameResult) {
	hs.batchMu.Lock()
	shouldFlush := false
	hs.batch = append(hs.batch, result)
	if len(hs.batch) >= hs.batchSize {
		shouldFlush = true
	}
	hs.batchMu.Unlock()

	if shouldFlush {
		hs.flushBatchToDB()
	}
}

// flushBatchToDB persists the current batch. A summary that fails to insert
// is logged and dropped; the queue is best-effort by design.
func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	batchCopy := make([]models.GameResult, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	flushed := 0
	for _, res := range batchCopy {
		if err := database.InsertGameResult(ctx, res); err != nil {
			log.Printf("[ERROR] insert game result %s: %v\n", res.GameID, err)
			continue
		}
		flushed++
	}
	if flushed > 0 {
		log.Printf("Flushed %d game results to DB.\n", flushed)
	}
}

func main() {
	hs := NewHistorianService()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		hs.Stop()
	}()

	hs.Run()
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
