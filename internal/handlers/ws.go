// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quattroplay/quattro/internal/game"
	"github.com/quattroplay/quattro/internal/middleware"
	"github.com/quattroplay/quattro/internal/models"
	"github.com/quattroplay/quattro/internal/room"
)

// IntentMessage is the structure of every inbound WebSocket message.
type IntentMessage struct {
	Type string `json:"type"`

	// PlayerName accompanies create-room and join-room.
	PlayerName string `json:"playerName,omitempty"`

	// RoomID addresses a room on join-room; on create-room it optionally
	// requests a specific code.
	RoomID string `json:"roomId,omitempty"`

	// CardIndex and ChosenColor accompany play-card. CardIndex is a pointer
	// so index 0 is distinguishable from an omitted field.
	CardIndex   *int   `json:"cardIndex,omitempty"`
	ChosenColor string `json:"chosenColor,omitempty"`
}

// outMessage is the envelope for every outbound notification. Fields are
// omitted unless the notification type uses them.
type outMessage struct {
	Type       string               `json:"type"`
	RoomID     string               `json:"roomId,omitempty"`
	PlayerID   string               `json:"playerId,omitempty"`
	Players    []models.RosterEntry `json:"players,omitempty"`
	State      *game.StateView      `json:"state,omitempty"`
	WinnerID   string               `json:"winnerId,omitempty"`
	WinnerName string               `json:"winnerName,omitempty"`
	Message    string               `json:"message,omitempty"`
}

// delivery pairs a marshaled-to-be notification with its target connection.
// Deliveries are assembled while the room lock is held and written only
// after it is released, so a slow socket never stalls the room.
type delivery struct {
	conn *websocket.Conn
	msg  outMessage
}

// WSHandler upgrades the connection, resolves the guest session, and runs
// the intent read loop until the client goes away.
func WSHandler(logger *logrus.Logger, srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Session identity must be settled before Accept hijacks the
		// response; cookies cannot be set afterwards.
		sessionID, err := EnsureGuestSession(w, r)
		if err != nil {
			logger.Warnf("Guest session setup failed: %v", err)
			http.Error(w, "session setup failed", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"quattro"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "quattro" {
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'quattro' subprotocol.")
			return
		}
		middleware.LogSessionConnect(logger, r.RemoteAddr, sessionID.String())

		sess := &models.Session{ID: sessionID, Conn: c}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readErr := srv.readIntents(ctx, sess, logger)

		// Implicit disconnect intent: vacate the seat and tell the room.
		srv.handleDisconnect(sess)
		middleware.LogSessionDisconnect(logger, r.RemoteAddr, sessionID.String(), readErr)
	}
}

// readIntents reads, decodes and dispatches messages from one session until
// the connection closes or the context is cancelled.
func (s *Server) readIntents(ctx context.Context, sess *models.Session, logger *logrus.Logger) error {
	for {
		msgType, data, err := sess.Conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg IntentMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON from session %s: %v", sess.ID, err)
			s.sendError(ctx, sess.Conn, "invalid JSON")
			continue
		}
		logger.Debugf("Intent %q from session %s", msg.Type, sess.ID)

		switch msg.Type {
		case "create-room":
			s.handleCreateRoom(ctx, sess, msg)
		case "join-room":
			s.handleJoinRoom(ctx, sess, msg)
		case "start-game":
			s.handleStartGame(ctx, sess)
		case "play-card":
			s.handlePlayCard(ctx, sess, msg)
		case "draw-card":
			s.handleDrawCard(ctx, sess)
		case "ping":
			s.send(ctx, sess.Conn, outMessage{Type: "pong"})
		default:
			s.sendError(ctx, sess.Conn, "unknown intent type: "+msg.Type)
		}
	}
}

// handleCreateRoom allocates a room with the session as sole member. The
// registry assigns the display name; a seated session's name may be read
// by concurrent roster broadcasts, so it is never written here.
func (s *Server) handleCreateRoom(ctx context.Context, sess *models.Session, msg IntentMessage) {
	r, err := s.Rooms.CreateRoom(sess, playerNameOrGuest(msg.PlayerName), msg.RoomID)
	if err != nil {
		s.sendError(ctx, sess.Conn, err.Error())
		return
	}

	r.Mu.Lock()
	deliveries := append(
		[]delivery{{sess.Conn, outMessage{Type: "room-created", RoomID: r.Code, PlayerID: sess.ID.String()}}},
		rosterDeliveries(r, "players-updated")...,
	)
	r.Mu.Unlock()

	s.deliver(ctx, deliveries)
}

// handleJoinRoom appends the session to an existing room's roster.
func (s *Server) handleJoinRoom(ctx context.Context, sess *models.Session, msg IntentMessage) {
	r, err := s.Rooms.JoinRoom(msg.RoomID, sess, playerNameOrGuest(msg.PlayerName))
	if err != nil {
		s.sendError(ctx, sess.Conn, err.Error())
		return
	}

	r.Mu.Lock()
	deliveries := append(
		[]delivery{{sess.Conn, outMessage{Type: "room-joined", RoomID: r.Code, PlayerID: sess.ID.String()}}},
		rosterDeliveries(r, "players-updated")...,
	)
	r.Mu.Unlock()

	s.deliver(ctx, deliveries)
}

// handleStartGame builds a fresh engine from the roster, deals, and sends
// each player their own game-started projection.
func (s *Server) handleStartGame(ctx context.Context, sess *models.Session) {
	r, ok := s.Rooms.BySession(sess.ID)
	if !ok {
		s.sendError(ctx, sess.Conn, room.ErrRoomNotFound.Error())
		return
	}

	r.Mu.Lock()
	g, err := r.StartGame()
	if err != nil {
		r.Mu.Unlock()
		s.sendError(ctx, sess.Conn, err.Error())
		return
	}
	deliveries := projectionDeliveries(r, g, "game-started")
	r.Mu.Unlock()

	s.Logger.Infof("Game %s started in room %s with %d players", g.ID, r.Code, len(g.Players))
	s.deliver(ctx, deliveries)
}

// handlePlayCard resolves one play-card intent and broadcasts the outcome.
// A rejected play produces an error notice for the origin session only and
// no state change; replaying it yields the identical rejection.
func (s *Server) handlePlayCard(ctx context.Context, sess *models.Session, msg IntentMessage) {
	if msg.CardIndex == nil {
		s.sendError(ctx, sess.Conn, "cardIndex is required")
		return
	}
	r, ok := s.Rooms.BySession(sess.ID)
	if !ok {
		s.sendError(ctx, sess.Conn, room.ErrRoomNotFound.Error())
		return
	}

	r.Mu.Lock()
	if r.Game == nil {
		r.Mu.Unlock()
		s.sendError(ctx, sess.Conn, "no game in progress")
		return
	}
	g := r.Game
	res, err := g.Play(sess.ID, *msg.CardIndex, msg.ChosenColor)
	if err != nil {
		r.Mu.Unlock()
		s.sendError(ctx, sess.Conn, err.Error())
		return
	}

	deliveries := projectionDeliveries(r, g, "game-updated")

	var summary *models.GameResult
	if res.Winner != uuid.Nil {
		over := outMessage{
			Type:       "game-over",
			WinnerID:   res.Winner.String(),
			WinnerName: winnerName(g, res.Winner),
		}
		for _, p := range r.Players {
			deliveries = append(deliveries, delivery{p.Conn, over})
		}
		sum := g.Summary()
		summary = &sum
		// The engine serves exactly one game; drop it so the room can
		// host a fresh one.
		r.Game = nil
	}
	r.Mu.Unlock()

	s.deliver(ctx, deliveries)
	if summary != nil {
		s.Logger.Infof("Game %s in room %s won by %s after %d turns", summary.GameID, summary.RoomID, summary.Winner, summary.TotalTurns)
		go s.publishResult(*summary)
	}
}

// handleDrawCard resolves one draw-card intent and broadcasts projections.
func (s *Server) handleDrawCard(ctx context.Context, sess *models.Session) {
	r, ok := s.Rooms.BySession(sess.ID)
	if !ok {
		s.sendError(ctx, sess.Conn, room.ErrRoomNotFound.Error())
		return
	}

	r.Mu.Lock()
	if r.Game == nil {
		r.Mu.Unlock()
		s.sendError(ctx, sess.Conn, "no game in progress")
		return
	}
	if _, err := r.Game.Draw(sess.ID); err != nil {
		r.Mu.Unlock()
		s.sendError(ctx, sess.Conn, err.Error())
		return
	}
	deliveries := projectionDeliveries(r, r.Game, "game-updated")
	r.Mu.Unlock()

	s.deliver(ctx, deliveries)
}

// handleDisconnect vacates the session's seat. The registry destroys the
// room when the roster empties; otherwise the remaining members are told.
// A live engine keeps the seat, merely marked disconnected.
func (s *Server) handleDisconnect(sess *models.Session) {
	r, alive := s.Rooms.RemoveSession(sess.ID)
	if r == nil || !alive {
		return
	}

	r.Mu.Lock()
	notice := outMessage{
		Type:     "player-disconnected",
		PlayerID: sess.ID.String(),
		Players:  r.Roster(),
	}
	deliveries := make([]delivery, 0, len(r.Players))
	for _, p := range r.Players {
		deliveries = append(deliveries, delivery{p.Conn, notice})
	}
	r.Mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.deliver(ctx, deliveries)
}

// publishResult hands a finished-game summary to the result sink. Failures
// are logged and swallowed: gameplay must never depend on storage.
func (s *Server) publishResult(res models.GameResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Sink.Publish(ctx, res); err != nil {
		s.Logger.Warnf("Failed to publish result for game %s: %v", res.GameID, err)
	}
}

// rosterDeliveries builds a players-updated style notification for every
// room member. Assumes the room lock is held.
func rosterDeliveries(r *room.Room, msgType string) []delivery {
	msg := outMessage{Type: msgType, Players: r.Roster()}
	deliveries := make([]delivery, 0, len(r.Players))
	for _, p := range r.Players {
		deliveries = append(deliveries, delivery{p.Conn, msg})
	}
	return deliveries
}

// projectionDeliveries builds one per-player state notification, each keyed
// to that player's own hand. Assumes the room lock is held.
func projectionDeliveries(r *room.Room, g *game.Game, msgType string) []delivery {
	deliveries := make([]delivery, 0, len(r.Players))
	for _, p := range r.Players {
		view := g.ProjectState(p.ID)
		deliveries = append(deliveries, delivery{p.Conn, outMessage{Type: msgType, State: &view}})
	}
	return deliveries
}

func winnerName(g *game.Game, winner uuid.UUID) string {
	for _, p := range g.Players {
		if p.ID == winner {
			return p.Name
		}
	}
	return ""
}

func playerNameOrGuest(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Guest"
	}
	return name
}

// deliver writes each queued notification with a per-write timeout.
func (s *Server) deliver(ctx context.Context, deliveries []delivery) {
	for _, d := range deliveries {
		if d.conn == nil {
			continue
		}
		s.send(ctx, d.conn, d.msg)
	}
}

// send marshals and writes one notification. Write errors are logged only;
// the reader side detects and handles dead connections.
func (s *Server) send(ctx context.Context, c *websocket.Conn, msg outMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.Logger.Errorf("Failed to marshal %s notification: %v", msg.Type, err)
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, data); err != nil {
		s.Logger.Warnf("Failed to write %s notification: %v", msg.Type, err)
	}
}

// sendError reports a recoverable failure to the originating session only.
func (s *Server) sendError(ctx context.Context, c *websocket.Conn, message string) {
	s.send(ctx, c, outMessage{Type: "error", Message: message})
}
