package models

import (
	"time"

	"github.com/google/uuid"
)

// ResultPlayer identifies one seat in a finished game's summary.
type ResultPlayer struct {
	PlayerID   uuid.UUID `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Position   int       `json:"position"`
}

// GameResult is the summary handed to the result sink exactly once per
// finished game. Persistence is best-effort: a failed write is logged and
// never surfaced to players.
type GameResult struct {
	GameID      uuid.UUID      `json:"gameId"`
	RoomID      string         `json:"roomId"`
	Players     []ResultPlayer `json:"players"`
	Winner      uuid.UUID      `json:"winner"`
	TotalTurns  int            `json:"totalTurns"`
	PlayedCards []Card         `json:"playedCards"`
	Duration    time.Duration  `json:"durationMs"`
	FinishedAt  time.Time      `json:"finishedAt"`
}
