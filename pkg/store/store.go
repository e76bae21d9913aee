package store

import (
	"database/sql"
	"errors"
	"log/slog"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when a uniqueness constraint would be violated,
// such as registering an already-taken username.
var ErrDuplicate = errors.New("store: already exists")

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER  PRIMARY KEY,
    username      TEXT     NOT NULL UNIQUE,
    password_hash TEXT     NOT NULL,
    first_name    TEXT     NOT NULL,
    last_name     TEXT     NOT NULL,
    education     TEXT,
    employment    TEXT,
    music         TEXT,
    movie         TEXT,
    nationality   TEXT,
    birthday      TEXT,
    created_at    DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
    id         INTEGER  PRIMARY KEY,
    user_id    INTEGER  NOT NULL REFERENCES users(id),
    content    TEXT     NOT NULL,
    image      TEXT     NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS comments (
    id         INTEGER  PRIMARY KEY,
    post_id    INTEGER  NOT NULL REFERENCES posts(id),
    user_id    INTEGER  NOT NULL REFERENCES users(id),
    content    TEXT     NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS friends (
    user_id   INTEGER NOT NULL REFERENCES users(id),
    friend_id INTEGER NOT NULL REFERENCES users(id),
    PRIMARY KEY (user_id, friend_id)
);
CREATE TABLE IF NOT EXISTS sessions (
    token_hash TEXT     PRIMARY KEY,
    user_id    INTEGER  NOT NULL REFERENCES users(id),
    created_at DATETIME NOT NULL,
    expires_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_user    ON posts(user_id);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`

// SetupSchema initializes the tables used by the store. It is idempotent and
// safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// Store provides access to all persistent application data.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New returns a Store backed by the given database. SetupSchema must have
// been run against the database before the store is used.
func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}
