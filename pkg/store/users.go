package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is a registered account, including the optional profile fields shown
// on the profile page. Optional fields are empty strings when unset.
type User struct {
	ID           int
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Profile      Profile
	CreatedAt    time.Time
}

// Profile holds the free-form profile fields a user may fill in.
// Birthday is stored as a YYYY-MM-DD string, or empty when unset.
type Profile struct {
	Education   string
	Employment  string
	Music       string
	Movie       string
	Nationality string
	Birthday    string
}

const userColumns = `id, username, password_hash, first_name, last_name,
	COALESCE(education, ''), COALESCE(employment, ''), COALESCE(music, ''),
	COALESCE(movie, ''), COALESCE(nationality, ''), COALESCE(birthday, ''), created_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Profile.Education, &u.Profile.Employment, &u.Profile.Music,
		&u.Profile.Movie, &u.Profile.Nationality, &u.Profile.Birthday, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// CreateUser inserts a new account and returns its assigned ID.
// ErrDuplicate is returned if the username is already taken.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, firstName, lastName string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, first_name, last_name, created_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		username, passwordHash, firstName, lastName, time.Now().UTC()).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created", "username", username, "id", id)
	return id, nil
}

// GetUserByName retrieves a user by their unique username.
func (s *Store) GetUserByName(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id int) (User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// UserExists reports whether a username is already registered.
func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateProfile replaces a user's profile fields. Empty strings are stored
// as NULL so an untouched profile stays distinguishable from a cleared one.
func (s *Store) UpdateProfile(ctx context.Context, userID int, p Profile) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET education = ?, employment = ?, music = ?, movie = ?,
		 nationality = ?, birthday = ? WHERE id = ?`,
		nullable(p.Education), nullable(p.Employment), nullable(p.Music),
		nullable(p.Movie), nullable(p.Nationality), nullable(p.Birthday), userID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
