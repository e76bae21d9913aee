package main

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/mholen/gather/pkg/views"
)

const flashCookieName = "gather_flash"

// setFlash queues a one-shot message for the next rendered page. The flash
// travels in a cookie so it survives the POST-redirect-GET pattern the
// handlers use.
func setFlash(w http.ResponseWriter, category, message string) {
	data, err := json.Marshal([]views.Flash{{Category: category, Message: message}})
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// popFlashes returns any pending flash messages and clears their cookie so
// each flash is shown exactly once. A cookie that fails to decode is
// silently dropped.
func popFlashes(w http.ResponseWriter, r *http.Request) []views.Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []views.Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
