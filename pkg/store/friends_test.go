package store

import (
	"context"
	"errors"
	"testing"
)

func TestAddAndGetFriends(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	carol := mustCreateUser(t, s, "carol")

	if err := s.AddFriend(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("AddFriend() error = %v", err)
	}
	if err := s.AddFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("AddFriend() error = %v", err)
	}

	friends, err := s.GetFriends(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetFriends() error = %v", err)
	}
	if len(friends) != 2 || friends[0].Username != "bob" || friends[1].Username != "carol" {
		t.Errorf("GetFriends() = %+v, want bob then carol", friends)
	}

	// One-directional: bob has not added anyone.
	friends, err = s.GetFriends(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetFriends() error = %v", err)
	}
	if len(friends) != 0 {
		t.Errorf("GetFriends(bob) = %+v, want none", friends)
	}
}

func TestAddFriendDuplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")

	if err := s.AddFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("AddFriend() error = %v", err)
	}
	if err := s.AddFriend(ctx, alice.ID, bob.ID); !errors.Is(err, ErrDuplicate) {
		t.Errorf("AddFriend(duplicate) error = %v, want ErrDuplicate", err)
	}
}

func TestBefriended(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")

	if err := s.AddFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("AddFriend() error = %v", err)
	}

	got, err := s.Befriended(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Befriended() error = %v", err)
	}
	if !got {
		t.Error("Befriended(alice, bob) = false, want true")
	}
	got, err = s.Befriended(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("Befriended() error = %v", err)
	}
	if got {
		t.Error("Befriended(bob, alice) = true, want false")
	}
}
