package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Session is one connected client. Its ID doubles as the player ID inside
// any game the session joins. The websocket connection is never serialized.
type Session struct {
	ID   uuid.UUID       `json:"id"`
	Name string          `json:"name"`
	Conn *websocket.Conn `json:"-"`
}

// RosterEntry is the public shape of a room member, broadcast in
// players-updated and player-disconnected notifications.
type RosterEntry struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
