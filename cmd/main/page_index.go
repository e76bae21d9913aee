package main

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mholen/gather/pkg/store"
)

// handleIndex serves the welcome page with its login and register forms,
// and processes submissions of either. A hidden "form" field says which of
// the two composite forms was submitted.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.render(w, "index", s.base(w, r, "Welcome", ""))
	case http.MethodPost:
		switch r.PostFormValue("form") {
		case "login":
			s.handleLogin(w, r)
		case "register":
			s.handleRegister(w, r)
		default:
			setFlash(w, "warning", "Unknown form submitted!")
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := parseLoginForm(r)
	if err := form.validate(); err != nil {
		setFlash(w, "warning", err.Error())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	user, err := s.store.GetUserByName(r.Context(), form.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("Failed to query user for login", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Run the password check even for unknown users so login timing doesn't
	// reveal whether a username is registered.
	hash := user.PasswordHash
	if hash == "" {
		hash = dummyPasswordHash
	}
	ok, err := s.auth.CheckPassword(hash, form.Password)
	if err != nil {
		s.logger.Error("Failed to check password", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.ID == 0 || !ok {
		setFlash(w, "warning", "Invalid username or password!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := s.auth.StartSession(w, r, user.ID); err != nil {
		s.logger.Error("Failed to start session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	setFlash(w, "success", "You have been logged in!")
	http.Redirect(w, r, "/stream/"+user.Username, http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	form := parseRegisterForm(r)
	if err := form.validate(); err != nil {
		setFlash(w, "warning", err.Error())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	hash, err := s.auth.HashPassword(form.Password)
	if err != nil {
		// bcrypt takes at most 72 bytes of password input.
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			setFlash(w, "warning", "Password must be at most 72 characters!")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.logger.Error("Failed to hash password", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, err := s.store.CreateUser(r.Context(), form.Username, hash, form.FirstName, form.LastName); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			setFlash(w, "warning", "User already exists!")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.logger.Error("Failed to create user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setFlash(w, "success", "User successfully created!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout tears down the session and sends the user back to the
// welcome page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.EndSession(w, r)
	setFlash(w, "success", "You have been logged out!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// dummyPasswordHash is a bcrypt hash of an unguessable value, used to keep
// login timing uniform for unknown usernames.
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"
