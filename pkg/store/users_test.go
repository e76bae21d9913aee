package store

import (
	"context"
	"errors"
	"testing"
)

func TestCreateUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.CreateUser(ctx, "alice", "hash", "Alice", "Aster")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if id == 0 {
		t.Fatal("CreateUser() returned id 0")
	}

	u, err := s.GetUserByName(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByName() error = %v", err)
	}
	if u.ID != id || u.FirstName != "Alice" || u.LastName != "Aster" {
		t.Errorf("GetUserByName() = %+v, want id %d, Alice Aster", u, id)
	}
	if u.Profile != (Profile{}) {
		t.Errorf("new user has non-empty profile: %+v", u.Profile)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "alice")
	if _, err := s.CreateUser(ctx, "alice", "hash", "Other", "Alice"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateUser(duplicate) error = %v, want ErrDuplicate", err)
	}
}

func TestUserExists(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "alice")

	exists, err := s.UserExists(ctx, "alice")
	if err != nil {
		t.Fatalf("UserExists() error = %v", err)
	}
	if !exists {
		t.Error("UserExists(alice) = false, want true")
	}
	exists, err = s.UserExists(ctx, "bob")
	if err != nil {
		t.Fatalf("UserExists() error = %v", err)
	}
	if exists {
		t.Error("UserExists(bob) = true, want false")
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.GetUserByName(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByName(ghost) error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetUserByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID(42) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "alice")

	p := Profile{
		Education:   "MSc",
		Employment:  "Gardener",
		Music:       "Kind of Blue",
		Movie:       "Stalker",
		Nationality: "Norwegian",
		Birthday:    "1990-04-02",
	}
	if err := s.UpdateProfile(ctx, u.ID, p); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Profile != p {
		t.Errorf("profile = %+v, want %+v", got.Profile, p)
	}

	// Clearing a field stores NULL, read back as empty string.
	p.Movie = ""
	if err := s.UpdateProfile(ctx, u.ID, p); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	got, err = s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Profile.Movie != "" {
		t.Errorf("cleared movie = %q, want empty", got.Profile.Movie)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	s := setupTestStore(t)

	if err := s.UpdateProfile(context.Background(), 99, Profile{Education: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateProfile(unknown) error = %v, want ErrNotFound", err)
	}
}
