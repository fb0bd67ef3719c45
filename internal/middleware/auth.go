// Package middleware provides HTTP middleware for session authentication,
// CORS handling, rate limiting, and request context management.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/moodify/backend/internal/logging"
	"github.com/moodify/backend/internal/services"
	"github.com/moodify/backend/internal/store"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "moodify_session"

type contextKey string

// SessionKey is the context key for storing the authenticated session.
const SessionKey contextKey = "session"

// refreshWindow is how close to access-token expiry a request triggers a
// token refresh.
const refreshWindow = time.Minute

// AuthMiddleware validates the session token, loads the session, and
// refreshes the Spotify access token when it is about to expire. Returns 401
// for missing or invalid sessions.
func AuthMiddleware(auth *services.AuthService, sessions *store.SessionStore, spotify *services.SpotifyService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				logging.LogSecurityEvent(r.Context(), logging.SecurityEventMissingSession, "missing session token")
				http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				logging.LogSecurityEvent(r.Context(), logging.SecurityEventInvalidSession, "invalid or expired session token")
				http.Error(w, `{"error":"invalid session"}`, http.StatusUnauthorized)
				return
			}

			sess, err := sessions.Get(r.Context(), claims.SessionID)
			if err != nil {
				logging.LogSecurityEvent(r.Context(), logging.SecurityEventInvalidSession, "session no longer exists")
				http.Error(w, `{"error":"session expired"}`, http.StatusUnauthorized)
				return
			}

			if time.Until(sess.TokenExpiresAt) < refreshWindow && sess.RefreshToken != "" {
				refreshed, err := refreshSession(r.Context(), sessions, spotify, sess)
				if err != nil {
					logging.LogSecurityEvent(r.Context(), logging.SecurityEventRefreshRejected, "access token refresh rejected")
					_ = sessions.Delete(r.Context(), sess.ID)
					http.Error(w, `{"error":"session expired"}`, http.StatusUnauthorized)
					return
				}
				sess = refreshed
			}

			ctx := context.WithValue(r.Context(), SessionKey, &sess)
			ctx = logging.UpdateRequestAttrs(ctx, sess.ID, sess.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func refreshSession(ctx context.Context, sessions *store.SessionStore, spotify *services.SpotifyService, sess store.Session) (store.Session, error) {
	creds, err := spotify.RefreshAccessToken(ctx, sess.RefreshToken)
	if err != nil {
		return store.Session{}, err
	}

	tokenExpiresAt := time.Now().Add(time.Duration(creds.ExpiresIn) * time.Second)
	if err := sessions.UpdateToken(ctx, sess.ID, creds.AccessToken, creds.RefreshToken, tokenExpiresAt); err != nil {
		return store.Session{}, err
	}

	sess.AccessToken = creds.AccessToken
	if creds.RefreshToken != "" {
		sess.RefreshToken = creds.RefreshToken
	}
	sess.TokenExpiresAt = tokenExpiresAt
	return sess, nil
}

// sessionToken extracts the session token from the cookie, falling back to a
// bearer Authorization header for non-browser clients.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// GetSession retrieves the authenticated session from the request context.
// Returns nil if no session is present (e.g., unauthenticated request).
func GetSession(ctx context.Context) *store.Session {
	sess, _ := ctx.Value(SessionKey).(*store.Session)
	return sess
}
