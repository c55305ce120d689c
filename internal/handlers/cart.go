package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/zasious/supermarketMVC/internal/store"
)

type CartHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

func (h *CartHandler) userID(r *http.Request) int {
	session, _ := h.SessionStore.Get(r, sessionName)
	if id, ok := session.Values["user_id"].(int); ok {
		return id
	}
	user, _ := CurrentUser(session)
	return user.ID
}

// cartError surfaces a store failure either as a JSON error body or a
// flash-redirect back to the cart, depending on content negotiation.
func (h *CartHandler) cartError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	message := fallback
	if store.IsDomainError(err) {
		message = err.Error()
	} else {
		slog.Error("Cart operation failed", "error", err)
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": message})
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	session.AddFlash(FlashMessage{Type: "error", Message: message})
	session.Save(r, w)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	if err := h.Store.EnsureCart(userID); err != nil {
		http.Error(w, "Error loading cart", http.StatusInternalServerError)
		return
	}
	items, err := h.Store.CartItems(userID)
	if err != nil {
		http.Error(w, "Error loading cart", http.StatusInternalServerError)
		return
	}

	var grandTotal float64
	for _, it := range items {
		grandTotal += it.Price * float64(it.Quantity)
	}

	tmpl := h.Templates.Get("cart.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Items":      items,
		"GrandTotal": grandTotal,
		"User":       user,
		"CsrfField":  csrf.TemplateField(r),
		"Flashes":    GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)

	productID, err := strconv.Atoi(r.FormValue("productId"))
	if err != nil {
		h.cartError(w, r, store.ErrNotFound, "Unable to add to cart")
		return
	}
	qty := 1
	if q, err := strconv.Atoi(r.FormValue("quantity")); err == nil {
		qty = q
	}

	if err := h.Store.EnsureCart(userID); err != nil {
		http.Error(w, "Error loading cart", http.StatusInternalServerError)
		return
	}
	if err := h.Store.AddOrIncrement(userID, productID, qty); err != nil {
		h.cartError(w, r, err, "Unable to add to cart")
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)

	productID, err := strconv.Atoi(r.FormValue("productId"))
	if err != nil {
		h.cartError(w, r, store.ErrNotFound, "Unable to update quantity")
		return
	}
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		h.cartError(w, r, store.ErrInvalidQuantity, "Unable to update quantity")
		return
	}

	if err := h.Store.UpdateQuantity(userID, productID, qty); err != nil {
		h.cartError(w, r, err, "Unable to update quantity")
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	productID, err := strconv.Atoi(r.FormValue("productId"))
	if err != nil {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if err := h.Store.RemoveItem(userID, productID); err != nil {
		http.Error(w, "Error removing item", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.ClearCart(h.userID(r)); err != nil {
		http.Error(w, "Error clearing cart", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Checkout converts the selected cart lines into an order. Succeeds or
// fails as a whole; the store rolls back on any stock violation.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)

	if err := r.ParseForm(); err != nil {
		h.cartError(w, r, store.ErrEmptySelection, "Select at least one item to checkout.")
		return
	}
	var selected []int
	for _, v := range r.PostForm["selectedProducts"] {
		if id, err := strconv.Atoi(v); err == nil {
			selected = append(selected, id)
		}
	}
	if len(selected) == 0 {
		h.cartError(w, r, store.ErrEmptySelection, "Select at least one item to checkout.")
		return
	}

	orderID, err := h.Store.CreateOrderFromCart(userID, selected)
	if err != nil {
		h.cartError(w, r, err, "Checkout failed")
		return
	}

	redirectURL := fmt.Sprintf("/orders/%d?from=checkout", orderID)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"orderId":  orderID,
			"redirect": redirectURL,
		})
		return
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}
