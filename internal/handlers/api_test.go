// internal/handlers/api_test.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quattroplay/quattro/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewServer(NopSink{}, logger)
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.Rooms.CreateRoom(&models.Session{ID: uuid.New()}, "host", "ABC123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	HealthHandler(srv)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status      string `json:"status"`
		ActiveRooms int    `json:"activeRooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.ActiveRooms)
}

func TestLeaderboardHandlerWithoutDB(t *testing.T) {
	srv := newTestServer(t)

	// No database pool is connected in tests; the endpoint degrades
	// instead of panicking.
	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()
	LeaderboardHandler(srv)(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewServerDefaultsToNopSink(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv := NewServer(nil, logger)
	require.NotNil(t, srv.Sink)
	assert.NoError(t, srv.Sink.Publish(context.Background(), models.GameResult{}))
	assert.Equal(t, 0, srv.Rooms.ActiveRooms())
}
