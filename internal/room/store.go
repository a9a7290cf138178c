// internal/room/store.go
package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quattroplay/quattro/internal/models"
)

const (
	codeLength = 6
	codeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Store is the process-scoped registry mapping room codes to rooms and
// sessions to the room they occupy. Its lock guards only the two maps and
// roster membership; gameplay mutation runs under each room's own lock.
type Store struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	sessions map[uuid.UUID]string
}

// NewStore returns an empty in-memory registry.
func NewStore() *Store {
	return &Store{
		rooms:    make(map[string]*Room),
		sessions: make(map[uuid.UUID]string),
	}
}

// CreateRoom allocates a room under the requested code, or under a freshly
// generated collision-free code when none is given, with the creating
// session as sole roster member under the given display name.
//
// The name is assigned only after every check passes, while the session is
// still roomless: a seated session's name is read by roster broadcasts, so
// a rejected intent must not touch it.
func (s *Store) CreateRoom(sess *models.Session, name, requestedCode string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.sessions[sess.ID]; taken {
		return nil, ErrAlreadyInRoom
	}

	code := requestedCode
	if code == "" {
		code = s.generateCode()
	} else if _, exists := s.rooms[code]; exists {
		return nil, ErrRoomCodeTaken
	}

	sess.Name = name
	r := &Room{
		Code:      code,
		Players:   []*models.Session{sess},
		CreatedAt: time.Now(),
	}
	s.rooms[code] = r
	s.sessions[sess.ID] = code
	return r, nil
}

// JoinRoom appends the session to the addressed room's roster under the
// given display name. Like CreateRoom, the name is assigned only once every
// check has passed.
func (s *Store) JoinRoom(code string, sess *models.Session, name string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.sessions[sess.ID]; taken {
		return nil, ErrAlreadyInRoom
	}
	r, exists := s.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if len(r.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	if r.Game != nil {
		return nil, ErrGameInProgress
	}
	sess.Name = name
	r.Players = append(r.Players, sess)
	s.sessions[sess.ID] = code
	return r, nil
}

// BySession resolves the room a session currently occupies.
func (s *Store) BySession(id uuid.UUID) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	r, ok := s.rooms[code]
	return r, ok
}

// Get looks a room up by code.
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	return r, ok
}

// RemoveSession takes the session out of whichever room it occupies. The
// room is destroyed once its roster empties; otherwise a live engine keeps
// the seat and only marks it disconnected. Returns the room (nil if the
// session was roomless) and whether the room still exists.
func (s *Store) RemoveSession(id uuid.UUID) (r *Room, alive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)

	r, ok = s.rooms[code]
	if !ok {
		return nil, false
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	if r.Game != nil {
		r.Game.MarkDisconnected(id)
	}
	if len(r.Players) == 0 {
		delete(s.rooms, code)
		return r, false
	}
	return r, true
}

// ActiveRooms reports how many rooms currently exist.
func (s *Store) ActiveRooms() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// generateCode produces an unused human-shareable room code.
// Assumes the store lock is held.
func (s *Store) generateCode() string {
	for {
		code := make([]byte, codeLength)
		for i := range code {
			code[i] = codeChars[rand.Intn(len(codeChars))]
		}
		if _, exists := s.rooms[string(code)]; !exists {
			return string(code)
		}
	}
}
