package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mholen/gather/pkg/store"
	"github.com/mholen/gather/pkg/views"
)

type commentsData struct {
	views.Base
	Post     store.Post
	Comments []store.Comment
}

// handleComments serves the comment thread for a single post and accepts
// new comments. The URL carries both the stream owner's username (for
// navigation links) and the post ID.
func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	username, postID, ok := commentsParams(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	post, err := s.store.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			setFlash(w, "warning", "Post does not exist!")
			http.Redirect(w, r, "/stream/"+currentUser(r).Username, http.StatusSeeOther)
			return
		}
		s.logger.Error("Failed to query post", "post_id", postID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		comments, err := s.store.GetComments(r.Context(), postID)
		if err != nil {
			s.logger.Error("Failed to query comments", "post_id", postID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.render(w, "comments", commentsData{
			Base:     s.base(w, r, "Comments", username),
			Post:     post,
			Comments: comments,
		})
	case http.MethodPost:
		form := parseContentForm(r)
		if err := form.validate(); err != nil {
			setFlash(w, "warning", err.Error())
			http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
			return
		}
		if _, err := s.store.CreateComment(r.Context(), postID, currentUser(r).ID, form.Content); err != nil {
			s.logger.Error("Failed to create comment", "post_id", postID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// commentsParams splits "/comments/<username>/<post id>" into its parts.
func commentsParams(path string) (string, int, bool) {
	trimmed := strings.TrimPrefix(path, "/comments/")
	trimmed = strings.TrimSuffix(trimmed, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, false
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, false
	}
	return parts[0], id, true
}
