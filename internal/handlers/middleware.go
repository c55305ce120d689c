package handlers

import (
	"encoding/gob"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/zasious/supermarketMVC/internal/models"
)

const sessionName = "session"

// Register types for gob encoding (used by sessions)
func init() {
	gob.Register(FlashMessage{})
	gob.Register(SessionUser{})
}

// SessionUser is the authenticated principal snapshot carried in the
// session cookie. Role is captured at login and trusted for the
// session's lifetime.
type SessionUser struct {
	ID       int
	Username string
	Email    string
	Address  string
	Contact  string
	Role     string
}

func (u SessionUser) IsAdmin() bool {
	return u.Role == "admin"
}

func NewSessionUser(u *models.User) SessionUser {
	return SessionUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Address:  u.Address,
		Contact:  u.Contact,
		Role:     u.Role,
	}
}

// CurrentUser reads the principal snapshot out of the session.
func CurrentUser(session *sessions.Session) (SessionUser, bool) {
	u, ok := session.Values["user"].(SessionUser)
	return u, ok
}

// Gate applies the session-derived authentication and authorization
// checks in front of protected handlers.
type Gate struct {
	SessionStore *sessions.CookieStore
}

// RequireAuth redirects anonymous requests to the login page. On
// success it backfills the cached user id from the session's user
// snapshot, idempotently, before passing through.
func (g *Gate) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := g.SessionStore.Get(r, sessionName)
		user, ok := CurrentUser(session)
		if !ok {
			session.AddFlash(FlashMessage{Type: "error", Message: "Please log in to continue"})
			session.Save(r, w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if id, cached := session.Values["user_id"].(int); !cached || id != user.ID {
			session.Values["user_id"] = user.ID
			session.Save(r, w)
		}
		next(w, r)
	}
}

// RequireAdmin redirects authenticated non-admins back to the shopping
// page. It assumes RequireAuth already ran.
func (g *Gate) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := g.SessionStore.Get(r, sessionName)
		user, ok := CurrentUser(session)
		if !ok || !user.IsAdmin() {
			session.AddFlash(FlashMessage{Type: "error", Message: "Access denied. Admin only."})
			session.Save(r, w)
			http.Redirect(w, r, "/shopping", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// LoggingMiddleware logs the details of each HTTP request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)
		slog.Info("HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.statusCode,
			"duration", time.Since(start),
			"ip", r.RemoteAddr,
		)
	})
}

// Custom ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// SecurityHeadersMiddleware adds standard security headers
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; script-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// FlashMessage structure
type FlashMessage struct {
	Type    string
	Message string
}

// GetFlash retrieves flash messages from the session
func GetFlash(session *sessions.Session) []FlashMessage {
	flashes := session.Flashes()
	var messages []FlashMessage
	for _, f := range flashes {
		if fm, ok := f.(FlashMessage); ok {
			messages = append(messages, fm)
		}
	}
	return messages
}

// wantsJSON reports whether the client asked for a JSON response, via
// either the XHR marker header or content negotiation.
func wantsJSON(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}
