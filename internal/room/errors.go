// internal/room/errors.go
package room

import "errors"

// Registry failure modes. All are expected, recoverable conditions reported
// to the originating session only; none mutates shared state when raised.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrInsufficientPlayers = errors.New("need at least 2 players to start")
	ErrAlreadyInRoom       = errors.New("session already belongs to a room")
	ErrRoomCodeTaken       = errors.New("room code already in use")
)
