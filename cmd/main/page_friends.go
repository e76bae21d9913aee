package main

import (
	"errors"
	"net/http"

	"github.com/mholen/gather/pkg/store"
	"github.com/mholen/gather/pkg/views"
)

type friendsData struct {
	views.Base
	Friends []store.User
}

// handleFriends serves a user's friend list and processes add-friend
// submissions, enforcing the ownership and sanity guards.
func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	username := pathParam(r.URL.Path, "/friends/")
	if username == "" {
		http.NotFound(w, r)
		return
	}

	listOwner, err := s.store.GetUserByName(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			setFlash(w, "warning", "User does not exist!")
			http.Redirect(w, r, "/stream/"+currentUser(r).Username, http.StatusSeeOther)
			return
		}
		s.logger.Error("Failed to query friend list owner", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		friends, err := s.store.GetFriends(r.Context(), listOwner.ID)
		if err != nil {
			s.logger.Error("Failed to query friends", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.render(w, "friends", friendsData{
			Base:    s.base(w, r, "Friends", username),
			Friends: friends,
		})
	case http.MethodPost:
		s.handleAddFriend(w, r, listOwner)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request, listOwner store.User) {
	redirect := "/friends/" + listOwner.Username
	user := currentUser(r)

	if user.ID != listOwner.ID {
		setFlash(w, "warning", "You can only add friends to your own friendslist.")
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	form := parseFriendForm(r)
	if err := form.validate(); err != nil {
		setFlash(w, "warning", err.Error())
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	friend, err := s.store.GetUserByName(r.Context(), form.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			setFlash(w, "warning", "User does not exist!")
			http.Redirect(w, r, redirect, http.StatusSeeOther)
			return
		}
		s.logger.Error("Failed to query friend", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if friend.ID == user.ID {
		setFlash(w, "warning", "You cannot be friends with yourself!")
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	if err := s.store.AddFriend(r.Context(), user.ID, friend.ID); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			setFlash(w, "warning", "You are already friends with this user!")
			http.Redirect(w, r, redirect, http.StatusSeeOther)
			return
		}
		s.logger.Error("Failed to add friend", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setFlash(w, "success", "Friend successfully added!")
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}
