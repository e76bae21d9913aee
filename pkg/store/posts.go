package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Post is a single stream entry, joined with its author's username and the
// number of comments it has accumulated.
type Post struct {
	ID           int
	UserID       int
	Author       string
	Content      string
	Image        string
	CommentCount int
	CreatedAt    time.Time
}

// CreatePost inserts a post for the given author. Image is the stored
// filename of an attached upload, or empty for a text-only post.
func (s *Store) CreatePost(ctx context.Context, userID int, content, image string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO posts (user_id, content, image, created_at)
		 VALUES (?, ?, ?, ?) RETURNING id`,
		userID, content, image, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert post: %w", err)
	}
	return id, nil
}

const postColumns = `p.id, p.user_id, u.username, p.content, p.image,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id), p.created_at`

// GetPost retrieves a single post by ID.
func (s *Store) GetPost(ctx context.Context, id int) (Post, error) {
	var p Post
	err := s.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts p JOIN users u ON u.id = p.user_id WHERE p.id = ?", id).
		Scan(&p.ID, &p.UserID, &p.Author, &p.Content, &p.Image, &p.CommentCount, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

// GetStream returns the posts visible on a user's stream: their own posts
// and those of everyone on their friend list, newest first.
func (s *Store) GetStream(ctx context.Context, userID int) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+postColumns+` FROM posts p JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = ?
		    OR p.user_id IN (SELECT friend_id FROM friends WHERE user_id = ?)
		 ORDER BY p.created_at DESC, p.id DESC`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stream: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var posts []Post
	for rows.Next() {
		var p Post
		if err = rows.Scan(&p.ID, &p.UserID, &p.Author, &p.Content, &p.Image, &p.CommentCount, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
