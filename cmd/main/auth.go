package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mholen/gather/pkg/store"
)

type contextKey string

const contextKeyUser = contextKey("user")

const sessionCookieName = "gather_session"

// Auth handles password hashing and cookie-backed login sessions.
// Session tokens are random and only their SHA-256 hash is persisted,
// so a leaked database cannot be replayed as live sessions.
type Auth struct {
	store  *store.Store
	logger *slog.Logger
	ttl    time.Duration
	cost   int
}

func NewAuth(st *store.Store, logger *slog.Logger, cfg *AuthConfig) *Auth {
	return &Auth{
		store:  st,
		logger: logger,
		ttl:    time.Duration(cfg.SessionTTLHours) * time.Hour,
		cost:   cfg.BcryptCost,
	}
}

// HashPassword derives a bcrypt hash for storage.
func (a *Auth) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// hash. A mismatch is a normal outcome, not an error.
func (a *Auth) CheckPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// StartSession creates a session for the user and sets the session cookie
// on the response.
func (a *Auth) StartSession(w http.ResponseWriter, r *http.Request, userID int) error {
	token, err := generateSessionToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(a.ttl)
	if err := a.store.CreateSession(r.Context(), hashSessionToken(token), userID, expires); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	a.logger.Info("Session started", "user_id", userID)
	return nil
}

// EndSession deletes the current session and clears the cookie.
// Missing or unknown sessions are ignored.
func (a *Auth) EndSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := a.store.DeleteSession(r.Context(), hashSessionToken(cookie.Value)); err != nil {
			a.logger.Error("Failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// userFromRequest resolves the session cookie to its user.
func (a *Auth) userFromRequest(r *http.Request) (store.User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return store.User{}, store.ErrNotFound
	}
	return a.store.GetSessionUser(r.Context(), hashSessionToken(cookie.Value))
}

// RequireLogin is the authentication middleware for all pages behind a
// login. An unauthenticated request gets a flash message and a redirect to
// the index page; an authenticated one proceeds with the user stored in
// the request context.
func (a *Auth) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.userFromRequest(r)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				a.logger.Error("Failed to resolve session", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			setFlash(w, "warning", "You must be logged in to view this page!")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the logged-in user placed in the context by
// RequireLogin. It must only be called from handlers behind that middleware.
func currentUser(r *http.Request) store.User {
	user, _ := r.Context().Value(contextKeyUser).(store.User)
	return user
}

func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func hashSessionToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
