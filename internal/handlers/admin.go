package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/zasious/supermarketMVC/internal/store"
)

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.DashboardStats()
	if err != nil {
		http.Error(w, "Error fetching stats", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("adminDashboard.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Stats":        stats,
		"RecentOrders": stats.RecentOrders,
		"User":         user,
		"Flashes":      GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.AllUsers()
	if err != nil {
		http.Error(w, "Error fetching users", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("adminUsers.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Users":     users,
		"User":      user,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// DeleteUser removes an account, refusing the acting admin's own.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	acting, _ := CurrentUser(session)

	targetID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || targetID <= 0 {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid user"})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	if err := h.Store.DeleteUser(targetID, acting.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrSelfDelete):
			session.AddFlash(FlashMessage{Type: "error", Message: err.Error()})
		case errors.Is(err, store.ErrNotFound):
			session.AddFlash(FlashMessage{Type: "error", Message: "Invalid user"})
		default:
			session.AddFlash(FlashMessage{Type: "error", Message: "Error deleting user."})
		}
		session.Save(r, w)
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "User deleted"})
	session.Save(r, w)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// ListOrders shows every order with its items and reviews, grouped
// after a flat join fetch.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.AllOrdersWithUsers()
	if err != nil {
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}

	orderIDs := make([]int, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	reviews, err := h.Store.ReviewsForOrders(orderIDs)
	if err != nil {
		http.Error(w, "Error fetching reviews", http.StatusInternalServerError)
		return
	}
	byOrder := make(map[int]int, len(orders))
	for i := range orders {
		byOrder[orders[i].ID] = i
	}
	for _, rv := range reviews {
		if i, ok := byOrder[rv.OrderID]; ok {
			orders[i].Reviews = append(orders[i].Reviews, rv)
		}
	}

	tmpl := h.Templates.Get("adminOrders.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Orders":  orders,
		"User":    user,
		"Flashes": GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}
