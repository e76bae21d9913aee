package store

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")

	id, err := s.CreatePost(ctx, alice.ID, "hello stream", "pic.png")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	p, err := s.GetPost(ctx, id)
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if p.Author != "alice" || p.Content != "hello stream" || p.Image != "pic.png" {
		t.Errorf("GetPost() = %+v", p)
	}
	if p.CommentCount != 0 {
		t.Errorf("new post comment count = %d, want 0", p.CommentCount)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.GetPost(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost(7) error = %v, want ErrNotFound", err)
	}
}

func TestGetStream(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	carol := mustCreateUser(t, s, "carol")

	if _, err := s.CreatePost(ctx, alice.ID, "by alice", ""); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if _, err := s.CreatePost(ctx, bob.ID, "by bob", ""); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if _, err := s.CreatePost(ctx, carol.ID, "by carol", ""); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	// Alice's stream contains only her own posts until she adds friends.
	posts, err := s.GetStream(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetStream() error = %v", err)
	}
	if len(posts) != 1 || posts[0].Author != "alice" {
		t.Fatalf("GetStream() before friends = %+v, want only alice's post", posts)
	}

	if err := s.AddFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("AddFriend() error = %v", err)
	}

	posts, err = s.GetStream(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetStream() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("GetStream() after friends returned %d posts, want 2", len(posts))
	}
	for _, p := range posts {
		if p.Author == "carol" {
			t.Error("stream contains post from non-friend carol")
		}
	}
}

func TestGetStreamOrdersNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")

	first, err := s.CreatePost(ctx, alice.ID, "first", "")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	second, err := s.CreatePost(ctx, alice.ID, "second", "")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	posts, err := s.GetStream(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetStream() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("GetStream() returned %d posts, want 2", len(posts))
	}
	if posts[0].ID != second || posts[1].ID != first {
		t.Errorf("stream order = [%d, %d], want [%d, %d]", posts[0].ID, posts[1].ID, second, first)
	}
}

func TestCommentCountOnStream(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")

	postID, err := s.CreatePost(ctx, alice.ID, "discuss", "")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.CreateComment(ctx, postID, alice.ID, "me again"); err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
	}

	posts, err := s.GetStream(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetStream() error = %v", err)
	}
	if posts[0].CommentCount != 3 {
		t.Errorf("comment count = %d, want 3", posts[0].CommentCount)
	}
}
