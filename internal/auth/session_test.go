// internal/auth/session_test.go
package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	Init()

	sessionID := uuid.New().String()
	token, err := CreateSessionToken(sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := AuthenticateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	Init()

	_, err := AuthenticateSessionToken("not-a-jwt")
	assert.Error(t, err)
}

func TestAuthenticateRejectsForeignKey(t *testing.T) {
	Init()
	token, err := CreateSessionToken(uuid.New().String())
	require.NoError(t, err)

	// Rotating the key pair invalidates everything signed before it.
	Init()
	_, err = AuthenticateSessionToken(token)
	assert.Error(t, err)
}

func TestTokenTTL(t *testing.T) {
	t.Setenv("SESSION_TOKEN_TTL", "-1h")
	Init()

	token, err := CreateSessionToken(uuid.New().String())
	require.NoError(t, err)

	_, err = AuthenticateSessionToken(token)
	assert.Error(t, err, "expired token is rejected")
}
