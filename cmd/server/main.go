// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/quattroplay/quattro/internal/auth"
	"github.com/quattroplay/quattro/internal/cache"
	"github.com/quattroplay/quattro/internal/database"
	"github.com/quattroplay/quattro/internal/handlers"
	"github.com/quattroplay/quattro/internal/middleware"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Gameplay never touches Postgres; only the leaderboard does, and it
	// degrades when the pool is absent.
	if err := database.ConnectDB(); err != nil {
		logger.Warnf("Postgres unavailable, leaderboard disabled: %v", err)
	}

	// Results are queued to Redis for the historian. Gameplay works fine
	// without it; summaries are simply dropped.
	var sink handlers.ResultSink
	if qs, err := cache.Connect(); err != nil {
		logger.Warnf("Redis unavailable, game results will be dropped: %v", err)
		sink = handlers.NopSink{}
	} else {
		sink = qs
	}

	srv := handlers.NewServer(sink, logger)

	mux := http.NewServeMux()

	// session websocket
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.WSHandler(logger, srv),
	)))

	// reporting endpoints
	mux.Handle("/api/health", middleware.LogMiddleware(logger)(handlers.HealthHandler(srv)))
	mux.Handle("/api/leaderboard", middleware.LogMiddleware(logger)(handlers.LeaderboardHandler(srv)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
