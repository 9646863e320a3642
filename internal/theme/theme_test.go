package theme

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *Store {
	return NewStore(sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!")))
}

// savedCookies persists t and returns the cookies the browser would keep.
func savedCookies(t *testing.T, s *Store, th Theme) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/theme", nil)
	require.NoError(t, s.Save(rec, req, th))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestResolve_Precedence(t *testing.T) {
	s := newStore()

	tests := []struct {
		name   string
		stored Theme
		hint   string
		want   Preference
	}{
		{name: "stored wins over hint", stored: Dark, hint: "light", want: Preference{Theme: Dark, Source: FromStore}},
		{name: "stored light", stored: Light, want: Preference{Theme: Light, Source: FromStore}},
		{name: "hint when nothing stored", hint: "dark", want: Preference{Theme: Dark, Source: FromHint}},
		{name: "invalid hint ignored", hint: "sepia", want: Preference{Theme: System, Source: FromSystem}},
		{name: "nothing known", want: Preference{Theme: System, Source: FromSystem}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.stored != System {
				for _, c := range savedCookies(t, s, tt.stored) {
					req.AddCookie(c)
				}
			}
			if tt.hint != "" {
				req.Header.Set(HintHeader, tt.hint)
			}
			assert.Equal(t, tt.want, s.Resolve(req))
		})
	}
}

func TestResolve_TamperedCookie(t *testing.T) {
	s := newStore()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionName, Value: "garbage"})
	req.Header.Set(HintHeader, "light")

	assert.Equal(t, Preference{Theme: Light, Source: FromHint}, s.Resolve(req))
}

func TestSave_RejectsUnknownTheme(t *testing.T) {
	s := newStore()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/theme", nil)

	assert.Error(t, s.Save(rec, req, "sepia"))
	assert.Error(t, s.Save(rec, req, System))
	assert.Empty(t, rec.Result().Cookies())
}

func TestBodyClass(t *testing.T) {
	assert.Equal(t, "dark-theme", Dark.BodyClass())
	assert.Empty(t, Light.BodyClass())
	assert.Empty(t, System.BodyClass())
}

func TestRequestHint(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestHint(rec)
	assert.Equal(t, HintHeader, rec.Header().Get("Accept-CH"))
}
