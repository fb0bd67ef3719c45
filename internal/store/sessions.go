// Package store persists per-user sessions for their lifetime. A session row
// holds the OAuth credentials of one authenticated user and is removed on
// logout or by the expiry sweeper; nothing outlives the session.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found")

// Session holds the credentials and identity of one authenticated user.
type Session struct {
	ID             string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
	ExpiresAt      time.Time
	UserID         string
	DisplayName    string
	CreatedAt      time.Time
}

// SessionStore reads and writes session rows.
type SessionStore struct {
	db *sql.DB
}

// New creates a SessionStore on top of the given database.
func New(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create inserts a new session row.
func (s *SessionStore) Create(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, access_token, refresh_token, token_expires_at, expires_at, user_id, display_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.AccessToken, sess.RefreshToken, sess.TokenExpiresAt, sess.ExpiresAt, sess.UserID, sess.DisplayName, sess.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get loads a session by id. Expired sessions are reported as not found.
func (s *SessionStore) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, access_token, refresh_token, token_expires_at, expires_at, user_id, display_name, created_at
		FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.AccessToken, &sess.RefreshToken, &sess.TokenExpiresAt, &sess.ExpiresAt, &sess.UserID, &sess.DisplayName, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if time.Now().After(sess.ExpiresAt) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// UpdateToken stores a refreshed access token and its expiry. A non-empty
// refreshToken replaces the stored one.
func (s *SessionStore) UpdateToken(ctx context.Context, id, accessToken, refreshToken string, tokenExpiresAt time.Time) error {
	query := `UPDATE sessions SET access_token = ?, token_expires_at = ? WHERE id = ?`
	args := []any{accessToken, tokenExpiresAt, id}
	if refreshToken != "" {
		query = `UPDATE sessions SET access_token = ?, refresh_token = ?, token_expires_at = ? WHERE id = ?`
		args = []any{accessToken, refreshToken, tokenExpiresAt, id}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session row. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// StartSweeper periodically deletes expired sessions until ctx is canceled.
func (s *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				slog.Warn("session sweep failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				slog.Info("swept expired sessions", slog.Int64("count", n))
			}
		}
	}
}
