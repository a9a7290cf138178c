// internal/room/store_test.go
package room

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quattroplay/quattro/internal/models"
)

func newSession() *models.Session {
	return &models.Session{ID: uuid.New()}
}

func TestCreateRoomGeneratedCode(t *testing.T) {
	s := NewStore()
	sess := newSession()

	r, err := s.CreateRoom(sess, "host", "")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), r.Code)
	assert.Equal(t, "host", sess.Name)
	require.Len(t, r.Players, 1)
	assert.Equal(t, sess.ID, r.Players[0].ID)

	got, ok := s.Get(r.Code)
	require.True(t, ok)
	assert.Same(t, r, got)
	assert.Equal(t, 1, s.ActiveRooms())
}

func TestCreateRoomRequestedCode(t *testing.T) {
	s := NewStore()

	r, err := s.CreateRoom(newSession(), "host", "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", r.Code)

	_, err = s.CreateRoom(newSession(), "other", "ABC123")
	assert.ErrorIs(t, err, ErrRoomCodeTaken)
}

func TestCreateRoomWhileSeated(t *testing.T) {
	s := NewStore()
	sess := newSession()

	_, err := s.CreateRoom(sess, "alice", "")
	require.NoError(t, err)

	_, err = s.CreateRoom(sess, "mallory", "")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
	assert.Equal(t, 1, s.ActiveRooms())
	assert.Equal(t, "alice", sess.Name, "rejected intent must not rename a seated session")
}

func TestJoinRoom(t *testing.T) {
	s := NewStore()
	host := newSession()
	guest := newSession()

	r, err := s.CreateRoom(host, "host", "ABC123")
	require.NoError(t, err)

	joined, err := s.JoinRoom("ABC123", guest, "guest")
	require.NoError(t, err)
	assert.Same(t, r, joined)
	assert.Len(t, r.Players, 2)
	assert.Equal(t, "guest", guest.Name)

	byGuest, ok := s.BySession(guest.ID)
	require.True(t, ok)
	assert.Same(t, r, byGuest)
}

func TestJoinRoomErrors(t *testing.T) {
	s := NewStore()
	host := newSession()
	_, err := s.CreateRoom(host, "alice", "ABC123")
	require.NoError(t, err)

	lost := newSession()
	_, err = s.JoinRoom("NOPE99", lost, "lost")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Empty(t, lost.Name, "no name assigned on rejection")

	_, err = s.JoinRoom("ABC123", host, "mallory")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
	assert.Equal(t, "alice", host.Name, "rejected intent must not rename a seated session")
}

func TestJoinRoomFull(t *testing.T) {
	s := NewStore()
	_, err := s.CreateRoom(newSession(), "p0", "ABC123")
	require.NoError(t, err)
	for i := 1; i < MaxPlayers; i++ {
		_, err := s.JoinRoom("ABC123", newSession(), fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}

	late := newSession()
	_, err = s.JoinRoom("ABC123", late, "overflow")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Empty(t, late.Name)
}

func TestJoinRoomInProgress(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom(newSession(), "host", "ABC123")
	require.NoError(t, err)
	_, err = s.JoinRoom("ABC123", newSession(), "guest")
	require.NoError(t, err)

	r.Mu.Lock()
	_, err = r.StartGame()
	r.Mu.Unlock()
	require.NoError(t, err)

	_, err = s.JoinRoom("ABC123", newSession(), "late")
	assert.ErrorIs(t, err, ErrGameInProgress)
}

// Re-sent create/join intents from a seated session are rejected without
// mutating anything, so roster broadcasts never observe a torn or changed
// name. Run under the race detector this also proves the accesses are
// synchronized.
func TestSeatedNameStableUnderRejectedIntents(t *testing.T) {
	s := NewStore()
	sess := newSession()
	r, err := s.CreateRoom(sess, "alice", "ABC123")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_, err := s.CreateRoom(sess, "mallory", "")
			assert.ErrorIs(t, err, ErrAlreadyInRoom)
			_, err = s.JoinRoom("ABC123", sess, "mallory")
			assert.ErrorIs(t, err, ErrAlreadyInRoom)
		}
	}()

	for {
		r.Mu.Lock()
		roster := r.Roster()
		r.Mu.Unlock()
		require.Len(t, roster, 1)
		require.Equal(t, "alice", roster[0].Name)

		select {
		case <-done:
			return
		default:
		}
	}
}

func TestStartGameRequiresTwo(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom(newSession(), "host", "ABC123")
	require.NoError(t, err)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	_, err = r.StartGame()
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
	assert.Nil(t, r.Game)
}

func TestStartGameTwice(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom(newSession(), "host", "ABC123")
	require.NoError(t, err)
	_, err = s.JoinRoom("ABC123", newSession(), "guest")
	require.NoError(t, err)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	g, err := r.StartGame()
	require.NoError(t, err)
	assert.True(t, g.Started)
	assert.Len(t, g.Players, 2)

	_, err = r.StartGame()
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestRemoveSessionBeforeStart(t *testing.T) {
	s := NewStore()
	host := newSession()
	guest := newSession()
	r, err := s.CreateRoom(host, "host", "ABC123")
	require.NoError(t, err)
	_, err = s.JoinRoom("ABC123", guest, "guest")
	require.NoError(t, err)

	got, alive := s.RemoveSession(guest.ID)
	assert.Same(t, r, got)
	assert.True(t, alive)
	assert.Len(t, r.Players, 1)

	_, ok := s.BySession(guest.ID)
	assert.False(t, ok, "session index entry is gone")

	// The departed session can join elsewhere immediately.
	_, err = s.CreateRoom(guest, "guest", "")
	assert.NoError(t, err)
}

func TestRemoveLastSessionDestroysRoom(t *testing.T) {
	s := NewStore()
	host := newSession()
	_, err := s.CreateRoom(host, "host", "ABC123")
	require.NoError(t, err)

	_, alive := s.RemoveSession(host.ID)
	assert.False(t, alive)
	assert.Equal(t, 0, s.ActiveRooms())
	_, ok := s.Get("ABC123")
	assert.False(t, ok)
}

func TestRemoveSessionMidGameKeepsSeat(t *testing.T) {
	s := NewStore()
	host := newSession()
	guest := newSession()
	r, err := s.CreateRoom(host, "host", "ABC123")
	require.NoError(t, err)
	_, err = s.JoinRoom("ABC123", guest, "guest")
	require.NoError(t, err)

	r.Mu.Lock()
	g, err := r.StartGame()
	r.Mu.Unlock()
	require.NoError(t, err)

	_, alive := s.RemoveSession(guest.ID)
	assert.True(t, alive)
	assert.Len(t, r.Players, 1, "roster shrinks")
	require.Len(t, g.Players, 2, "engine seats persist")

	for _, p := range g.Players {
		if p.ID == guest.ID {
			assert.False(t, p.Connected)
		} else {
			assert.True(t, p.Connected)
		}
	}
}

func TestRemoveUnknownSession(t *testing.T) {
	s := NewStore()
	r, alive := s.RemoveSession(uuid.New())
	assert.Nil(t, r)
	assert.False(t, alive)
}

func TestGeneratedCodesAreUnique(t *testing.T) {
	s := NewStore()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		r, err := s.CreateRoom(newSession(), fmt.Sprintf("host-%d", i), "")
		require.NoError(t, err)
		assert.False(t, seen[r.Code])
		seen[r.Code] = true
	}
}
