package main

import (
	"errors"
	"net/http"

	"github.com/mholen/gather/pkg/store"
	"github.com/mholen/gather/pkg/views"
)

type profileData struct {
	views.Base
	User store.User
	Own  bool
}

// handleProfile serves a user's profile page. The update form is only
// rendered, and updates only accepted, for the viewer's own profile.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := pathParam(r.URL.Path, "/profile/")
	if username == "" {
		http.NotFound(w, r)
		return
	}

	profileUser, err := s.store.GetUserByName(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			setFlash(w, "warning", "User does not exist!")
			http.Redirect(w, r, "/stream/"+currentUser(r).Username, http.StatusSeeOther)
			return
		}
		s.logger.Error("Failed to query profile user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.render(w, "profile", profileData{
			Base: s.base(w, r, "Profile", username),
			User: profileUser,
			Own:  currentUser(r).ID == profileUser.ID,
		})
	case http.MethodPost:
		s.handleProfileUpdate(w, r, profileUser)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request, profileUser store.User) {
	redirect := "/profile/" + profileUser.Username

	if currentUser(r).ID != profileUser.ID {
		setFlash(w, "warning", "You cannot update another user's profile!")
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	profile := parseProfileForm(r)
	if err := validateProfile(profile); err != nil {
		setFlash(w, "warning", err.Error())
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	if err := s.store.UpdateProfile(r.Context(), profileUser.ID, profile); err != nil {
		s.logger.Error("Failed to update profile", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setFlash(w, "success", "Profile updated!")
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}
