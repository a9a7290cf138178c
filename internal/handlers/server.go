// internal/handlers/server.go
package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/quattroplay/quattro/internal/models"
	"github.com/quattroplay/quattro/internal/room"
)

// ResultSink accepts one finished-game summary per game. Durability is
// best-effort: the router fires and forgets, and a failed publish is logged
// without ever touching gameplay state or reaching players.
type ResultSink interface {
	Publish(ctx context.Context, result models.GameResult) error
}

// NopSink discards summaries. Used when no Redis is reachable and in tests.
type NopSink struct{}

func (NopSink) Publish(context.Context, models.GameResult) error { return nil }

// Server holds the process-wide state behind the HTTP and WebSocket
// handlers: the room registry and the result sink.
type Server struct {
	Rooms  *room.Store
	Sink   ResultSink
	Logger *logrus.Logger
}

// NewServer wires a Server with an empty registry.
func NewServer(sink ResultSink, logger *logrus.Logger) *Server {
	if sink == nil {
		sink = NopSink{}
	}
	return &Server{
		Rooms:  room.NewStore(),
		Sink:   sink,
		Logger: logger,
	}
}
