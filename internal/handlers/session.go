// internal/handlers/session.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/quattroplay/quattro/internal/auth"
)

// EnsureGuestSession resolves the caller's session ID from the session_token
// cookie, minting a fresh guest identity (and setting the cookie) when the
// cookie is absent or no longer verifies. Must run before the connection is
// upgraded, while response headers can still be written.
func EnsureGuestSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if cookie, err := r.Cookie("session_token"); err == nil {
		if idStr, err := auth.AuthenticateSessionToken(cookie.Value); err == nil {
			if id, parseErr := uuid.Parse(idStr); parseErr == nil {
				return id, nil
			}
		}
	}

	id := uuid.New()
	token, err := auth.CreateSessionToken(id.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create guest session token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return id, nil
}
