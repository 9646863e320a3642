// Package theme persists the dark/light preference of the builder page.
//
// A stored preference always wins. Without one the Sec-CH-Prefers-Color-Scheme
// client hint is used, and without that the page falls back to the
// browser's prefers-color-scheme media query.
package theme

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// Theme is a color scheme.
type Theme string

// Themes. System means no preference is known on the server.
const (
	Dark   Theme = "dark"
	Light  Theme = "light"
	System Theme = ""
)

// Source tells where a resolved theme came from.
type Source int

// Resolution sources, in precedence order.
const (
	FromStore Source = iota
	FromHint
	FromSystem
)

// HintHeader is the client hint carrying the system color scheme.
const HintHeader = "Sec-CH-Prefers-Color-Scheme"

const (
	sessionName = "folio"
	themeKey    = "theme"
)

// Parse returns the theme named s.
func Parse(s string) (Theme, bool) {
	switch Theme(s) {
	case Dark, Light:
		return Theme(s), true
	default:
		return System, false
	}
}

// BodyClass is the class applied to the page body.
func (t Theme) BodyClass() string {
	if t == Dark {
		return "dark-theme"
	}
	return ""
}

// Preference is a resolved theme.
type Preference struct {
	Theme  Theme
	Source Source
}

// Store reads and writes the theme preference in a cookie session.
type Store struct {
	sessions sessions.Store
}

// NewStore wraps a session store.
func NewStore(s sessions.Store) *Store {
	return &Store{sessions: s}
}

// Resolve returns the theme for r.
func (s *Store) Resolve(r *http.Request) Preference {
	if sess, err := s.sessions.Get(r, sessionName); err == nil {
		if v, ok := sess.Values[themeKey].(string); ok {
			if t, ok := Parse(v); ok {
				return Preference{Theme: t, Source: FromStore}
			}
		}
	}

	if t, ok := Parse(r.Header.Get(HintHeader)); ok {
		return Preference{Theme: t, Source: FromHint}
	}
	return Preference{Theme: System, Source: FromSystem}
}

// Save persists t for the client of r.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, t Theme) error {
	if _, ok := Parse(string(t)); !ok {
		return fmt.Errorf("invalid theme %q", t)
	}

	// A session that fails to decode is replaced by the fresh one Get returns.
	sess, _ := s.sessions.Get(r, sessionName)
	sess.Values[themeKey] = string(t)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// RequestHint asks the browser to send the color scheme hint on later
// requests.
func RequestHint(w http.ResponseWriter) {
	w.Header().Set("Accept-CH", HintHeader)
	w.Header().Add("Vary", HintHeader)
}
