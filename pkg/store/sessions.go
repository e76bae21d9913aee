package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession records a login session for a user. The caller is expected
// to store only a hash of the session token, never the token itself.
func (s *Store) CreateSession(ctx context.Context, tokenHash string, userID int, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		tokenHash, userID, time.Now().UTC(), expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSessionUser resolves a session token hash to its user. Expired or
// unknown sessions return ErrNotFound.
func (s *Store) GetSessionUser(ctx context.Context, tokenHash string) (User, error) {
	var userID int
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM sessions WHERE token_hash = ? AND expires_at > ?",
		tokenHash, time.Now().UTC()).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return s.GetUserByID(ctx, userID)
}

// DeleteSession removes a session, logging the user out of that client.
func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = ?", tokenHash)
	return err
}

// PruneSessions removes all expired sessions and returns how many were deleted.
func (s *Store) PruneSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
