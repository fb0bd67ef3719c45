package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/moodify/backend/internal/database"
	"github.com/moodify/backend/internal/services"
	"github.com/moodify/backend/internal/store"
)

func newTestSessions(t *testing.T) *store.SessionStore {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return store.New(db)
}

func TestAuthMiddleware(t *testing.T) {
	auth := services.NewAuthService("test-secret", time.Hour)
	sessions := newTestSessions(t)

	now := time.Now()
	sess := store.Session{
		ID:             "sess-1",
		AccessToken:    "at-1",
		RefreshToken:   "rt-1",
		TokenExpiresAt: now.Add(time.Hour),
		ExpiresAt:      now.Add(time.Hour),
		UserID:         "user-1",
		DisplayName:    "User One",
		CreatedAt:      now,
	}
	if err := sessions.Create(context.Background(), sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	validToken, err := auth.GenerateToken(sess.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	orphanToken, err := auth.GenerateToken("no-such-session")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "missing token",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "garbage token",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid token for unknown session",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: orphanToken})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: validToken})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bearer header fallback",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *store.Session
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetSession(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			AuthMiddleware(auth, sessions, nil)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if seen == nil || seen.UserID != sess.UserID {
					t.Errorf("session in context = %+v", seen)
				}
			}
		})
	}
}

func TestAuthMiddleware_RejectedRefreshInvalidatesSession(t *testing.T) {
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer accounts.Close()

	auth := services.NewAuthService("test-secret", time.Hour)
	sessions := newTestSessions(t)
	spotify := services.NewSpotifyService("id", "secret", "http://cb", accounts.URL, "https://api.example")

	now := time.Now()
	sess := store.Session{
		ID:             "sess-revoked",
		AccessToken:    "at-old",
		RefreshToken:   "rt-revoked",
		TokenExpiresAt: now.Add(10 * time.Second),
		ExpiresAt:      now.Add(time.Hour),
		UserID:         "user-1",
		CreatedAt:      now,
	}
	if err := sessions.Create(context.Background(), sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	token, err := auth.GenerateToken(sess.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run after a rejected refresh")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	AuthMiddleware(auth, sessions, spotify)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if _, err := sessions.Get(context.Background(), sess.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after rejected refresh = %v, want ErrNotFound", err)
	}
}

func TestAuthMiddleware_RefreshesExpiringToken(t *testing.T) {
	refreshed := false
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshed = true
		if got := r.FormValue("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-new","expires_in":3600}`))
	}))
	defer accounts.Close()

	auth := services.NewAuthService("test-secret", time.Hour)
	sessions := newTestSessions(t)
	spotify := services.NewSpotifyService("id", "secret", "http://cb", accounts.URL, "https://api.example")

	now := time.Now()
	sess := store.Session{
		ID:             "sess-stale",
		AccessToken:    "at-old",
		RefreshToken:   "rt-1",
		TokenExpiresAt: now.Add(10 * time.Second),
		ExpiresAt:      now.Add(time.Hour),
		UserID:         "user-1",
		CreatedAt:      now,
	}
	if err := sessions.Create(context.Background(), sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	token, err := auth.GenerateToken(sess.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var seen *store.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	AuthMiddleware(auth, sessions, spotify)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if !refreshed {
		t.Error("expected a refresh request to the accounts server")
	}
	if seen == nil || seen.AccessToken != "at-new" {
		t.Errorf("session in context = %+v", seen)
	}
	if seen != nil && seen.RefreshToken != "rt-1" {
		t.Errorf("RefreshToken = %q, want the stored one kept", seen.RefreshToken)
	}

	stored, err := sessions.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("failed to reload session: %v", err)
	}
	if stored.AccessToken != "at-new" {
		t.Errorf("stored AccessToken = %q, want %q", stored.AccessToken, "at-new")
	}
}
