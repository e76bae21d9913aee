package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mholen/gather/pkg/store"
)

// Field length bounds applied to submitted forms. These match the limits
// enforced by the page markup so a well-behaved browser never trips them.
const (
	maxNameLen     = 64
	minPasswordLen = 8
	maxPasswordLen = 99
	maxContentLen  = 500
	maxProfileLen  = 64
)

type loginForm struct {
	Username string
	Password string
}

func parseLoginForm(r *http.Request) loginForm {
	return loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

func (f loginForm) validate() error {
	if f.Username == "" || f.Password == "" {
		return errors.New("Username and password are required!")
	}
	return nil
}

type registerForm struct {
	FirstName       string
	LastName        string
	Username        string
	Password        string
	ConfirmPassword string
}

func parseRegisterForm(r *http.Request) registerForm {
	return registerForm{
		FirstName:       strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:        strings.TrimSpace(r.PostFormValue("last_name")),
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
}

func (f registerForm) validate() error {
	if err := requireLength("First name", f.FirstName, 1, maxNameLen); err != nil {
		return err
	}
	if err := requireLength("Last name", f.LastName, 1, maxNameLen); err != nil {
		return err
	}
	if err := requireLength("Username", f.Username, 1, maxNameLen); err != nil {
		return err
	}
	if err := requireLength("Password", f.Password, minPasswordLen, maxPasswordLen); err != nil {
		return err
	}
	if f.Password != f.ConfirmPassword {
		return errors.New("Passwords do not match!")
	}
	return nil
}

type contentForm struct {
	Content string
}

func parseContentForm(r *http.Request) contentForm {
	return contentForm{Content: strings.TrimSpace(r.PostFormValue("content"))}
}

func (f contentForm) validate() error {
	return requireLength("Content", f.Content, 1, maxContentLen)
}

type friendForm struct {
	Username string
}

func parseFriendForm(r *http.Request) friendForm {
	return friendForm{Username: strings.TrimSpace(r.PostFormValue("username"))}
}

func (f friendForm) validate() error {
	return requireLength("Username", f.Username, 1, maxNameLen)
}

func parseProfileForm(r *http.Request) store.Profile {
	return store.Profile{
		Education:   strings.TrimSpace(r.PostFormValue("education")),
		Employment:  strings.TrimSpace(r.PostFormValue("employment")),
		Music:       strings.TrimSpace(r.PostFormValue("music")),
		Movie:       strings.TrimSpace(r.PostFormValue("movie")),
		Nationality: strings.TrimSpace(r.PostFormValue("nationality")),
		Birthday:    strings.TrimSpace(r.PostFormValue("birthday")),
	}
}

func validateProfile(p store.Profile) error {
	for field, value := range map[string]string{
		"Education":   p.Education,
		"Employment":  p.Employment,
		"Music":       p.Music,
		"Movie":       p.Movie,
		"Nationality": p.Nationality,
	} {
		if len(value) > maxProfileLen {
			return fmt.Errorf("%s must be at most %d characters!", field, maxProfileLen)
		}
	}
	if p.Birthday != "" {
		if _, err := time.Parse("2006-01-02", p.Birthday); err != nil {
			return errors.New("Birthday must be a valid date!")
		}
	}
	return nil
}

func requireLength(field, value string, min, max int) error {
	if len(value) < min || len(value) > max {
		if min <= 1 {
			return fmt.Errorf("%s must be between 1 and %d characters!", field, max)
		}
		return fmt.Errorf("%s must be between %d and %d characters!", field, min, max)
	}
	return nil
}
