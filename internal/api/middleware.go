package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type contextKey struct{ name string }

var ownerIDKey = contextKey{"ownerID"}

// ownerID returns the authenticated owner identifier the auth middleware put
// on the request context.
func ownerID(r *http.Request) string {
	uid, _ := r.Context().Value(ownerIDKey).(string)
	return uid
}

// AuthMiddleware validates the bearer token and resolves it to an existing
// profile, so downstream handlers always see a trusted, verified owner id.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody("Authorization header is required"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		uid, err := h.tokens.ValidateToken(tokenString)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody("invalid token"))
			return
		}

		user, err := h.users.GetProfile(r.Context(), uid)
		if err != nil || user == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody("unknown user"))
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, user.UID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one line per request with status and duration.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
