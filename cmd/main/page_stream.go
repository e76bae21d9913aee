package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mholen/gather/pkg/store"
	"github.com/mholen/gather/pkg/views"
)

type streamData struct {
	views.Base
	Posts []store.Post
}

// handleStream serves a user's stream and accepts new posts with an
// optional image attachment.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	username := pathParam(r.URL.Path, "/stream/")
	if username == "" {
		http.NotFound(w, r)
		return
	}

	streamUser, err := s.store.GetUserByName(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			setFlash(w, "warning", "User does not exist!")
			http.Redirect(w, r, "/stream/"+currentUser(r).Username, http.StatusSeeOther)
			return
		}
		s.logger.Error("Failed to query stream user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		posts, err := s.store.GetStream(r.Context(), streamUser.ID)
		if err != nil {
			s.logger.Error("Failed to query stream", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.render(w, "stream", streamData{
			Base:  s.base(w, r, "Stream", username),
			Posts: posts,
		})
	case http.MethodPost:
		s.handleNewPost(w, r, username)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleNewPost(w http.ResponseWriter, r *http.Request, username string) {
	config := s.cm.Get()
	redirect := "/stream/" + username

	// MaxBytesReader enforces the cap; the ParseMultipartForm argument alone
	// only bounds the in-memory portion before spilling to disk.
	maxBytes := config.Uploads.MaxSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		setFlash(w, "warning", "Post is too large!")
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	form := parseContentForm(r)
	if err := form.validate(); err != nil {
		setFlash(w, "warning", err.Error())
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	var imageName string
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		imageName, err = s.saveUpload(file, header, config.Uploads, config.Server.UploadsDir)
		if err != nil {
			if errors.Is(err, errBadFileType) {
				setFlash(w, "warning", "Invalid file type!")
				http.Redirect(w, r, redirect, http.StatusSeeOther)
				return
			}
			s.logger.Error("Failed to save upload", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	case errors.Is(err, http.ErrMissingFile):
		// Text-only post.
	default:
		setFlash(w, "warning", "Invalid image upload!")
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	if _, err := s.store.CreatePost(r.Context(), currentUser(r).ID, form.Content, imageName); err != nil {
		s.logger.Error("Failed to create post", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

var errBadFileType = errors.New("file type not allowed")

// saveUpload stores an uploaded image under a random name, keeping only the
// (validated) extension from the client-supplied filename.
func (s *Server) saveUpload(file multipart.File, header *multipart.FileHeader, cfg *UploadConfig, dir string) (string, error) {
	defer func(file multipart.File) {
		_ = file.Close()
	}(file)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if !allowedExtension(ext, cfg.AllowedExtensions) {
		return "", errBadFileType
	}

	name := uuid.NewString() + "." + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func(dst *os.File) {
		_ = dst.Close()
	}(dst)

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	s.logger.Info("Upload stored", "file", name, "original", header.Filename)
	return name, nil
}

func allowedExtension(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// pathParam extracts the single path parameter following prefix, tolerating
// an optional trailing slash.
func pathParam(path, prefix string) string {
	trimmed := strings.TrimPrefix(path, prefix)
	trimmed = strings.TrimSuffix(trimmed, "/")
	if strings.Contains(trimmed, "/") {
		return ""
	}
	return trimmed
}
