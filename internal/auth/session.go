// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signing key pair for guest session tokens. Tokens only carry a session
// UUID; they give a browser a stable player identity across page loads, not
// a seat resume in a live game.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is how long issued tokens stay valid (0 => no expiry).
	tokenTTL time.Duration
)

// Init generates a fresh ed25519 key pair at startup and reads the optional
// SESSION_TOKEN_TTL duration from the environment. Restarting the process
// invalidates all outstanding tokens, which is fine: in-progress games do
// not survive a restart either.
func Init() {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		fmt.Printf("failed to generate ed25519 key pair: %v\n", err)
		os.Exit(1)
	}
	tokenTTL = 0
	if ttl := os.Getenv("SESSION_TOKEN_TTL"); ttl != "" && ttl != "never" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			fmt.Printf("failed to parse SESSION_TOKEN_TTL: %v\n", err)
			os.Exit(1)
		}
		tokenTTL = d
	}
}

// CreateSessionToken signs a JWT with "sub" = sessionID.
func CreateSessionToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": sessionID,
	}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateSessionToken verifies a token string and returns its "sub"
// session ID.
func AuthenticateSessionToken(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	sessionID, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return sessionID, nil
}
