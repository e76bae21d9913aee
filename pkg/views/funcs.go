package views

import (
	"html/template"
	"time"
)

func makeFuncMap() template.FuncMap {
	return template.FuncMap{
		"navActive":  navActive,
		"formatTime": formatTime,
	}
}

// navActive reports whether the nav link for page should carry the active
// marker given the current page title. The Stream link stays active on the
// comments page, since comments are reached from the stream.
func navActive(title, page string) bool {
	if page == "Stream" {
		return title == "Stream" || title == "Comments"
	}
	return title == page
}

func formatTime(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 15:04")
}
