// Package middleware holds the HTTP middleware of the reservation proxy.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/requester"
	"github.com/brizzai/resy-client/internal/utils"
	"go.uber.org/zap"
)

type contextKey string

const (
	authTokenKey contextKey = "auth_token"

	// UserIDHeader optionally names the user a booking record is written for
	UserIDHeader = "x-user-id"
)

// CORS allows any origin and answers preflight requests directly
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requester.AuthTokenHeader+", "+UserIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuthToken rejects requests without the provider token header and stores the token in
// the request context
func RequireAuthToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(requester.AuthTokenHeader))
		if token == "" {
			utils.WriteError(w, http.StatusUnauthorized, apperror.KindAuthenticationError.Message())
			return
		}

		ctx := context.WithValue(r.Context(), authTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthToken returns the token stored by RequireAuthToken
func AuthToken(ctx context.Context) string {
	token, _ := ctx.Value(authTokenKey).(string)
	return token
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs every request with its status and latency
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}
