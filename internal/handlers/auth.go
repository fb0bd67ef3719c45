// Package handlers implements the HTTP boundary of Moodify. Handlers decode
// requests, call into services, and map typed failures to status codes.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/moodify/backend/internal/config"
	"github.com/moodify/backend/internal/logging"
	"github.com/moodify/backend/internal/middleware"
	"github.com/moodify/backend/internal/models"
	"github.com/moodify/backend/internal/services"
	"github.com/moodify/backend/internal/store"
)

// stateCookieName carries the OAuth state across the authorization redirect.
const stateCookieName = "moodify_oauth_state"

// AuthHandler drives the Spotify OAuth authorization code flow and the
// session lifecycle built on top of it.
type AuthHandler struct {
	cfg      *config.Config
	spotify  *services.SpotifyService
	auth     *services.AuthService
	sessions *store.SessionStore
}

// NewAuthHandler creates an AuthHandler with the required dependencies.
func NewAuthHandler(cfg *config.Config, spotify *services.SpotifyService, auth *services.AuthService, sessions *store.SessionStore) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		spotify:  spotify,
		auth:     auth,
		sessions: sessions,
	}
}

// Login redirects the browser to the Spotify authorization page with a fresh
// state value pinned in a short-lived cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.spotify.AuthorizeURL(state), http.StatusFound)
}

// Callback completes the OAuth flow: it verifies the state, exchanges the
// authorization code, fetches the user profile, creates the session, and
// sets the session cookie.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventStateMismatch, "oauth state mismatch on callback")
		writeError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}
	clearCookie(w, stateCookieName)

	if cbErr := r.URL.Query().Get("error"); cbErr != "" {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventAuthDenied, "authorization denied by user or provider")
		writeError(w, http.StatusBadRequest, "authorization failed: "+cbErr)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	creds, err := h.spotify.ExchangeCode(r.Context(), code)
	if err != nil {
		writeAuthError(r, w, "token exchange failed", err)
		return
	}

	profile, err := h.spotify.GetUserProfile(r.Context(), creds.AccessToken)
	if err != nil {
		writeAuthError(r, w, "failed to fetch user profile", err)
		return
	}

	now := time.Now()
	sess := store.Session{
		ID:             uuid.NewString(),
		AccessToken:    creds.AccessToken,
		RefreshToken:   creds.RefreshToken,
		TokenExpiresAt: now.Add(time.Duration(creds.ExpiresIn) * time.Second),
		ExpiresAt:      now.Add(h.cfg.SessionDuration),
		UserID:         profile.ID,
		DisplayName:    profile.DisplayName,
		CreatedAt:      now,
	}
	if err := h.sessions.Create(r.Context(), sess); err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to create session", err)
		return
	}

	token, err := h.auth.GenerateToken(sess.ID)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to issue session token", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}

// Logout deletes the session and clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess != nil {
		if err := h.sessions.Delete(r.Context(), sess.ID); err != nil {
			writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to delete session", err)
			return
		}
	}
	clearCookie(w, middleware.SessionCookieName)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	writeJSON(w, http.StatusOK, models.MeResponse{
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName,
	})
}

// writeAuthError maps upstream auth failures to 502 and everything else
// (request building, response parsing) to 500.
func writeAuthError(r *http.Request, w http.ResponseWriter, message string, err error) {
	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, message, err)
		return
	}
	writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, message, err)
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
