package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// AddFriend adds friendID to userID's friend list. Adding an existing
// friend returns ErrDuplicate.
func (s *Store) AddFriend(ctx context.Context, userID, friendID int) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO friends (user_id, friend_id) VALUES (?, ?)", userID, friendID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert friend: %w", err)
	}
	return nil
}

// GetFriends returns the users on userID's friend list, sorted by username.
func (s *Store) GetFriends(ctx context.Context, userID int) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 JOIN friends f ON f.friend_id = users.id
		 WHERE f.user_id = ?
		 ORDER BY username ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var friends []User
	for rows.Next() {
		var u User
		if err = rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.Profile.Education, &u.Profile.Employment, &u.Profile.Music,
			&u.Profile.Movie, &u.Profile.Nationality, &u.Profile.Birthday, &u.CreatedAt); err != nil {
			return nil, err
		}
		friends = append(friends, u)
	}
	return friends, rows.Err()
}

// Befriended reports whether friendID is on userID's friend list.
func (s *Store) Befriended(ctx context.Context, userID, friendID int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friends WHERE user_id = ? AND friend_id = ?",
		userID, friendID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
