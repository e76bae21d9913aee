package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Comment is a reply to a post, joined with its author's username.
type Comment struct {
	ID        int
	PostID    int
	UserID    int
	Author    string
	Content   string
	CreatedAt time.Time
}

// CreateComment inserts a comment on the given post.
func (s *Store) CreateComment(ctx context.Context, postID, userID int, content string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO comments (post_id, user_id, content, created_at)
		 VALUES (?, ?, ?, ?) RETURNING id`,
		postID, userID, content, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert comment: %w", err)
	}
	return id, nil
}

// GetComments returns all comments on a post, oldest first.
func (s *Store) GetComments(ctx context.Context, postID int) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.post_id, c.user_id, u.username, c.content, c.created_at
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.post_id = ?
		 ORDER BY c.created_at ASC, c.id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err = rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
