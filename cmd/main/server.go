package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/mholen/gather/pkg/store"
	"github.com/mholen/gather/pkg/views"
)

// Server wires the store, views, auth, and rate limiting together and owns
// the page routes.
type Server struct {
	cm      *ConfigManager
	db      *sql.DB
	logger  *slog.Logger
	store   *store.Store
	views   *views.Manager
	auth    *Auth
	limiter *RateLimiter
	mux     *http.ServeMux
	handler http.Handler
}

func NewServer(cm *ConfigManager, logger *slog.Logger, db *sql.DB) (*Server, error) {
	config := cm.Get()

	st := store.New(db, logger)

	vm, err := views.NewManager(logger, config.Server.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create view manager: %w", err)
	}

	server := &Server{
		cm:     cm,
		db:     db,
		logger: logger,
		store:  st,
		views:  vm,
		auth:   NewAuth(st, logger, config.Auth),
		mux:    http.NewServeMux(),
	}
	server.limiter = NewRateLimiter(config.RateLimit, server.clientIP, logger)

	server.mux.HandleFunc("/", server.handleIndex)
	server.mux.HandleFunc("/favicon.ico", handleFavicon)
	server.mux.Handle("/stream/", server.auth.RequireLogin(http.HandlerFunc(server.handleStream)))
	server.mux.Handle("/comments/", server.auth.RequireLogin(http.HandlerFunc(server.handleComments)))
	server.mux.Handle("/friends/", server.auth.RequireLogin(http.HandlerFunc(server.handleFriends)))
	server.mux.Handle("/profile/", server.auth.RequireLogin(http.HandlerFunc(server.handleProfile)))
	server.mux.Handle("/uploads/", server.auth.RequireLogin(http.HandlerFunc(server.handleUploads)))
	server.mux.Handle("/logout", server.auth.RequireLogin(http.HandlerFunc(server.handleLogout)))

	server.handler = server.setSecurityHeaders(server.limiter.Handler(server.mux))

	return server, nil
}

// Handler returns the full middleware-wrapped handler for the HTTP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// render executes a page template through a buffer so a template failure
// can still produce a clean error response.
func (s *Server) render(w http.ResponseWriter, page string, data any) {
	var buf bytes.Buffer
	if err := s.views.Render(&buf, page, data); err != nil {
		s.logger.Error("Failed to execute template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// base assembles the layout fields shared by every page, consuming any
// pending flash messages in the process.
func (s *Server) base(w http.ResponseWriter, r *http.Request, title, username string) views.Base {
	return views.Base{
		Title:    title,
		Username: username,
		Flashes:  popFlashes(w, r),
	}
}

func (s *Server) setSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy",
			"default-src 'self';"+
				"script-src 'self' cdn.jsdelivr.net;"+
				"style-src 'self' cdn.jsdelivr.net maxcdn.bootstrapcdn.com;"+
				"font-src maxcdn.bootstrapcdn.com;"+
				"img-src 'self';")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the requesting client's IP. Forwarding headers are only
// honored when the direct peer is a configured trusted proxy.
func (s *Server) clientIP(r *http.Request) string {
	remote, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If splitting fails (e.g., no port), use the address as is.
		remote = r.RemoteAddr
	}

	if !s.cm.IsTrusted(remote) {
		return remote
	}

	// The X-Real-Ip header contains the forwarded IP in some cases (like from nginx)
	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return realIP
	}

	// The X-Forwarded-For header can contain a comma-separated list of IPs.
	// The first IP in the list is the original client IP.
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		ips := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	return remote
}

// handleFavicon returns no content so favicon requests don't fall through
// to the index handler.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
