package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/zasious/supermarketMVC/internal/models"
	"github.com/zasious/supermarketMVC/internal/store"
)

type ShopHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

// searchProducts runs the listing query with an optional search term and
// decorates each product with its rating summary.
func (h *ShopHandler) searchProducts(term string) ([]models.Product, error) {
	products, err := h.Store.SearchProducts(term)
	if err != nil {
		return nil, err
	}
	summaries, err := h.Store.RatingSummary()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if rs, ok := summaries[products[i].ID]; ok {
			products[i].AvgRating = rs.AvgRating
			products[i].ReviewCount = rs.ReviewCount
		}
	}
	return products, nil
}

func (h *ShopHandler) Shopping(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	products, err := h.searchProducts(term)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("shopping.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Products": products,
		"User":     user,
		"Search":   term,
		"Flashes":  GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *ShopHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := h.Store.ProductByID(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	reviews, err := h.Store.ReviewsForProduct(id)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("product.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Product":   product,
		"Reviews":   reviews,
		"User":      user,
		"CsrfField": csrf.TemplateField(r),
	}
	tmpl.Execute(w, data)
}
