package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/moodify/backend/internal/database"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return New(db)
}

func testSession(id string, expiresAt time.Time) Session {
	now := time.Now()
	return Session{
		ID:             id,
		AccessToken:    "at-" + id,
		RefreshToken:   "rt-" + id,
		TokenExpiresAt: now.Add(time.Hour),
		ExpiresAt:      expiresAt,
		UserID:         "user-" + id,
		DisplayName:    "User " + id,
		CreatedAt:      now,
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := testSession("s1", time.Now().Add(time.Hour))
	if err := s.Create(ctx, sess); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.AccessToken != sess.AccessToken || got.UserID != sess.UserID || got.DisplayName != sess.DisplayName {
		t.Errorf("loaded session mismatch: %+v", got)
	}
}

func TestSessionStore_GetUnknown(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_GetExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, testSession("old", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := s.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestSessionStore_UpdateToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, testSession("s1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newExpiry := time.Now().Add(2 * time.Hour)
	if err := s.UpdateToken(ctx, "s1", "at-refreshed", "", newExpiry); err != nil {
		t.Fatalf("UpdateToken failed: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.AccessToken != "at-refreshed" {
		t.Errorf("AccessToken = %q, want at-refreshed", got.AccessToken)
	}
	// Empty refresh token keeps the stored one.
	if got.RefreshToken != "rt-s1" {
		t.Errorf("RefreshToken = %q, want rt-s1", got.RefreshToken)
	}

	if err := s.UpdateToken(ctx, "s1", "at-2", "rt-2", newExpiry); err != nil {
		t.Fatalf("UpdateToken failed: %v", err)
	}
	got, _ = s.Get(ctx, "s1")
	if got.RefreshToken != "rt-2" {
		t.Errorf("RefreshToken = %q, want rt-2", got.RefreshToken)
	}
}

func TestSessionStore_UpdateTokenUnknown(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateToken(context.Background(), "missing", "at", "", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, testSession("s1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an unknown id is not an error.
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete of unknown id failed: %v", err)
	}
}

func TestSessionStore_DeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, testSession("live", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Create(ctx, testSession("dead", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := s.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}

	if _, err := s.Get(ctx, "live"); err != nil {
		t.Errorf("live session should survive the sweep: %v", err)
	}
}
