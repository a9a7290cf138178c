// internal/handlers/session_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quattroplay/quattro/internal/auth"
)

func TestEnsureGuestSessionMintsCookie(t *testing.T) {
	auth.Init()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()

	id, err := EnsureGuestSession(rec, req)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	sub, err := auth.AuthenticateSessionToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, id.String(), sub)
}

func TestEnsureGuestSessionReusesValidToken(t *testing.T) {
	auth.Init()

	id := uuid.New()
	token, err := auth.CreateSessionToken(id.String())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Cookie", "other=1; session_token="+token+"; more=2")
	rec := httptest.NewRecorder()

	got, err := EnsureGuestSession(rec, req)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Empty(t, rec.Result().Cookies(), "no re-mint for a valid token")
}

func TestEnsureGuestSessionIgnoresPrefixedCookieName(t *testing.T) {
	auth.Init()

	id := uuid.New()
	token, err := auth.CreateSessionToken(id.String())
	require.NoError(t, err)

	// xsession_token is a different cookie; its value must not be treated
	// as ours.
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Cookie", "xsession_token="+token)
	rec := httptest.NewRecorder()

	got, err := EnsureGuestSession(rec, req)
	require.NoError(t, err)
	assert.NotEqual(t, id, got)
	require.Len(t, rec.Result().Cookies(), 1, "a fresh identity is minted")
}

func TestEnsureGuestSessionReplacesBadToken(t *testing.T) {
	auth.Init()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Cookie", "session_token=garbage")
	rec := httptest.NewRecorder()

	id, err := EnsureGuestSession(rec, req)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	require.Len(t, rec.Result().Cookies(), 1)
}
