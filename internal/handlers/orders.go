package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/zasious/supermarketMVC/internal/models"
	"github.com/zasious/supermarketMVC/internal/store"
)

type OrderHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

func (h *OrderHandler) userID(r *http.Request) int {
	session, _ := h.SessionStore.Get(r, sessionName)
	if id, ok := session.Values["user_id"].(int); ok {
		return id
	}
	user, _ := CurrentUser(session)
	return user.ID
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.OrdersByUser(h.userID(r))
	if err != nil {
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("orders.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Orders": orders,
		"User":   user,
	}
	tmpl.Execute(w, data)
}

func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid order", http.StatusBadRequest)
		return
	}
	userID := h.userID(r)

	order, err := h.Store.OrderForUser(orderID, userID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching order", http.StatusInternalServerError)
		return
	}

	reviews, err := h.Store.ReviewsForOrder(orderID)
	if err != nil {
		http.Error(w, "Error fetching reviews", http.StatusInternalServerError)
		return
	}
	var myReview *models.Review
	for i := range reviews {
		if reviews[i].UserID == userID {
			myReview = &reviews[i]
			break
		}
	}

	tmpl := h.Templates.Get("orderDetail.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Order":        order,
		"Reviews":      reviews,
		"MyReview":     myReview,
		"FromCheckout": r.URL.Query().Get("from") == "checkout",
		"User":         user,
		"CsrfField":    csrf.TemplateField(r),
		"Flashes":      GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// AddReview validates the rating range and order ownership, then
// upserts the (order, product, user) review.
func (h *OrderHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	userID := h.userID(r)

	orderID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid order", http.StatusBadRequest)
		return
	}
	productID, pidErr := strconv.Atoi(r.FormValue("productId"))
	rating, ratingErr := strconv.Atoi(r.FormValue("rating"))
	comment := strings.TrimSpace(r.FormValue("comment"))

	if pidErr != nil || ratingErr != nil || rating < 1 || rating > 5 {
		session.AddFlash(FlashMessage{Type: "error", Message: "Please provide a rating between 1 and 5 for a product."})
		session.Save(r, w)
		http.Redirect(w, r, fmt.Sprintf("/orders/%d", orderID), http.StatusSeeOther)
		return
	}

	// Ownership check: the order must belong to this user and contain
	// the reviewed product.
	order, err := h.Store.OrderForUser(orderID, userID)
	if errors.Is(err, store.ErrNotFound) {
		session.AddFlash(FlashMessage{Type: "error", Message: "Order not found"})
		session.Save(r, w)
		http.Redirect(w, r, "/orders", http.StatusSeeOther)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching order", http.StatusInternalServerError)
		return
	}
	hasProduct := false
	for _, it := range order.Items {
		if it.ProductID == productID {
			hasProduct = true
			break
		}
	}
	if !hasProduct {
		session.AddFlash(FlashMessage{Type: "error", Message: "Product not found in this order"})
		session.Save(r, w)
		http.Redirect(w, r, fmt.Sprintf("/orders/%d", orderID), http.StatusSeeOther)
		return
	}

	if err := h.Store.AddOrUpdateReview(orderID, productID, userID, rating, comment); err != nil {
		http.Error(w, "Error saving review", http.StatusInternalServerError)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Review saved"})
	session.Save(r, w)
	http.Redirect(w, r, fmt.Sprintf("/orders/%d", orderID), http.StatusSeeOther)
}
