// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"

	"github.com/quattroplay/quattro/internal/models"
)

// PlayerView is one seat as seen by a particular observer. Hand is present
// only when the seat belongs to the observer; everyone else gets the count.
type PlayerView struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	CardCount int           `json:"cardCount"`
	Hand      []models.Card `json:"hand,omitempty"`
	Position  int           `json:"position"`
	Connected bool          `json:"connected"`
}

// StateView is the broadcast-safe snapshot of a game for one observer.
// This projection is the only engine state that ever leaves the process;
// raw internals (other hands, full discard history) must never leak.
type StateView struct {
	RoomID             string        `json:"roomId"`
	Players            []PlayerView  `json:"players"`
	TopCard            *models.Card  `json:"topCard,omitempty"`
	CurrentColor       models.Color  `json:"currentColor"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	CurrentPlayerID    uuid.UUID     `json:"currentPlayerId"`
	DeckCount          int           `json:"deckCount"`
	Direction          int           `json:"direction"`
	Started            bool          `json:"gameStarted"`
	Winner             *uuid.UUID    `json:"winner,omitempty"`
}

// ProjectState generates the snapshot for the requesting player. Assumes the
// room lock is held.
func (g *Game) ProjectState(forPlayer uuid.UUID) StateView {
	view := StateView{
		RoomID:             g.RoomCode,
		CurrentColor:       g.CurrentColor,
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		CurrentPlayerID:    g.Players[g.CurrentPlayerIndex].ID,
		DeckCount:          len(g.Deck),
		Direction:          g.Direction,
		Started:            g.Started,
	}
	if top, ok := g.TopDiscard(); ok {
		view.TopCard = &top
	}
	if g.Winner != uuid.Nil {
		w := g.Winner
		view.Winner = &w
	}

	for _, p := range g.Players {
		pv := PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			CardCount: len(p.Hand),
			Position:  p.Position,
			Connected: p.Connected,
		}
		if p.ID == forPlayer {
			pv.Hand = make([]models.Card, len(p.Hand))
			copy(pv.Hand, p.Hand)
		}
		view.Players = append(view.Players, pv)
	}
	return view
}
