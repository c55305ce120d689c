package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
)

func testSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
}

// requestWithSession builds a request carrying a session cookie for the
// given user; a nil user yields an anonymous request.
func requestWithSession(t *testing.T, cs *sessions.CookieStore, target string, user *SessionUser) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if user == nil {
		return r
	}
	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	session, _ := cs.Get(seed, sessionName)
	session.Values["user"] = *user
	if err := session.Save(seed, w); err != nil {
		t.Fatalf("save session: %v", err)
	}
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	cs := testSessionStore()
	gate := &Gate{SessionStore: cs}

	called := false
	handler := gate.RequireAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	w := httptest.NewRecorder()
	handler(w, requestWithSession(t, cs, "/cart", nil))

	if called {
		t.Error("protected handler ran for an anonymous request")
	}
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}
}

func TestRequireAuthPassesAndBackfillsUserID(t *testing.T) {
	cs := testSessionStore()
	gate := &Gate{SessionStore: cs}

	var seenID int
	handler := gate.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		session, _ := cs.Get(r, sessionName)
		seenID, _ = session.Values["user_id"].(int)
	})

	user := &SessionUser{ID: 7, Username: "alice", Role: "user"}
	w := httptest.NewRecorder()
	handler(w, requestWithSession(t, cs, "/cart", user))

	if seenID != 7 {
		t.Errorf("cached user_id = %d, want backfilled 7", seenID)
	}
}

func TestRequireAdminRedirectsNonAdmin(t *testing.T) {
	cs := testSessionStore()
	gate := &Gate{SessionStore: cs}

	called := false
	handler := gate.RequireAdmin(func(w http.ResponseWriter, r *http.Request) { called = true })

	user := &SessionUser{ID: 7, Username: "alice", Role: "user"}
	w := httptest.NewRecorder()
	handler(w, requestWithSession(t, cs, "/admin/users", user))

	if called {
		t.Error("admin handler ran for a non-admin")
	}
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/shopping" {
		t.Errorf("redirect = %q, want /shopping", loc)
	}
}

func TestRequireAdminPassesAdmin(t *testing.T) {
	cs := testSessionStore()
	gate := &Gate{SessionStore: cs}

	called := false
	handler := gate.RequireAdmin(func(w http.ResponseWriter, r *http.Request) { called = true })

	admin := &SessionUser{ID: 1, Username: "root", Role: "admin"}
	w := httptest.NewRecorder()
	handler(w, requestWithSession(t, cs, "/admin/users", admin))

	if !called {
		t.Error("admin handler did not run for an admin")
	}
}

func TestWantsJSON(t *testing.T) {
	plain := httptest.NewRequest(http.MethodPost, "/cart/add", nil)
	if wantsJSON(plain) {
		t.Error("plain form request should not want JSON")
	}

	xhr := httptest.NewRequest(http.MethodPost, "/cart/add", nil)
	xhr.Header.Set("X-Requested-With", "XMLHttpRequest")
	if !wantsJSON(xhr) {
		t.Error("XHR request should want JSON")
	}

	accept := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
	accept.Header.Set("Accept", "application/json, text/plain")
	if !wantsJSON(accept) {
		t.Error("Accept: application/json request should want JSON")
	}
}
