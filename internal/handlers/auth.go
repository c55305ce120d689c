package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/zasious/supermarketMVC/internal/models"
	"github.com/zasious/supermarketMVC/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

// Home renders the public landing page.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	tmpl := h.Templates.Get("index.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, loggedIn := CurrentUser(session)
	data := map[string]interface{}{
		"User":     user,
		"LoggedIn": loggedIn,
	}
	tmpl.Execute(w, data)
}

func (h *AuthHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("login.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AuthHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		session.AddFlash(FlashMessage{Type: "error", Message: "All fields are required."})
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := h.Store.UserByEmail(email)
	if err != nil {
		slog.Error("Login lookup failed", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Internal Server Error"})
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid credentials"})
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	session.Values["user"] = NewSessionUser(user)
	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Login successful", "user_id", user.ID, "role", user.Role)
	if user.IsAdmin() {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/shopping", http.StatusSeeOther)
}

func (h *AuthHandler) RegisterGet(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("register.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// RegisterPost creates the account with the non-privileged role and
// provisions its empty cart.
func (h *AuthHandler) RegisterPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")
	if username == "" || email == "" || password == "" {
		session.AddFlash(FlashMessage{Type: "error", Message: "All fields are required."})
		session.Save(r, w)
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Address:  r.FormValue("address"),
		Contact:  r.FormValue("contact"),
		Role:     "user",
	}
	if err := h.Store.CreateUser(user); err != nil {
		slog.Error("Registration failed", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Registration failed"})
		session.Save(r, w)
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Registration successful! Please log in."})
	session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	delete(session.Values, "user")
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1 // Expire immediately
	session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
