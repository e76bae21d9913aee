package main

import (
	"net/http"
	"path/filepath"
	"strings"
)

// handleUploads serves stored post images. Only the bare stored filename is
// accepted, so the handler cannot be walked out of the uploads directory.
func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/uploads/")
	if name == "" || name != filepath.Base(name) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filepath.Join(s.cm.Get().Server.UploadsDir, name))
}
