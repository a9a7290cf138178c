// internal/room/room.go
package room

import (
	"sync"
	"time"

	"github.com/quattroplay/quattro/internal/game"
	"github.com/quattroplay/quattro/internal/models"
)

// MaxPlayers caps the roster of a single room.
const MaxPlayers = 4

// Room is one shared table: a join-ordered roster plus, once started, a game
// engine. The registry owns the Room for its whole lifetime; it is created
// on the first create-room intent and destroyed when the roster empties.
//
// Mu serializes every mutation of the room, roster and engine alike. At most
// one intent is in flight per room; different rooms proceed in parallel.
type Room struct {
	Code      string
	Players   []*models.Session
	Game      *game.Game
	CreatedAt time.Time

	Mu sync.Mutex
}

// Roster returns the public shape of the current membership.
// Assumes the room lock is held.
func (r *Room) Roster() []models.RosterEntry {
	entries := make([]models.RosterEntry, 0, len(r.Players))
	for _, p := range r.Players {
		entries = append(entries, models.RosterEntry{ID: p.ID, Name: p.Name})
	}
	return entries
}

// StartGame constructs a fresh engine from the current roster, deals hands
// and marks it started. Each engine serves exactly one game; the router
// clears r.Game once a winner is set, which re-arms this check.
// Assumes the room lock is held.
func (r *Room) StartGame() (*game.Game, error) {
	if r.Game != nil {
		return nil, ErrGameInProgress
	}
	if len(r.Players) < 2 {
		return nil, ErrInsufficientPlayers
	}
	g := game.New(r.Code, r.Players)
	g.DealInitialHands()
	r.Game = g
	return g, nil
}
