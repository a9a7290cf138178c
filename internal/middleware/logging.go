// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware is an HTTP middleware that logs incoming requests using
// Logrus: method, path, duration and remote address.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogSessionConnect logs an accepted WebSocket session.
func LogSessionConnect(logger *logrus.Logger, remoteAddr, sessionID string) {
	logger.WithFields(logrus.Fields{
		"remote":  remoteAddr,
		"session": sessionID,
	}).Info("WebSocket connected")
}

// LogSessionDisconnect logs a closed WebSocket session.
func LogSessionDisconnect(logger *logrus.Logger, remoteAddr, sessionID string, err error) {
	fields := logrus.Fields{
		"remote":  remoteAddr,
		"session": sessionID,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
