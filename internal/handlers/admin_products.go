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

type AdminHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
	UploadDir    string
}

// Inventory is the admin product listing, with the same search and
// rating decoration as the shopping page.
func (h *AdminHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	products, err := h.Store.SearchProducts(term)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	summaries, err := h.Store.RatingSummary()
	if err != nil {
		http.Error(w, "Error fetching ratings", http.StatusInternalServerError)
		return
	}
	for i := range products {
		if rs, ok := summaries[products[i].ID]; ok {
			products[i].AvgRating = rs.AvgRating
			products[i].ReviewCount = rs.ReviewCount
		}
	}

	tmpl := h.Templates.Get("inventory.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Products":  products,
		"User":      user,
		"Search":    term,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) AddProductForm(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.DistinctCategories()
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}
	tmpl := h.Templates.Get("addProduct.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Categories": categories,
		"User":       user,
		"CsrfField":  csrf.TemplateField(r),
		"Flashes":    GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// parseProductForm validates the shared add/update product fields.
func parseProductForm(r *http.Request) (*models.Product, string) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		return nil, "Product name is required."
	}
	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		return nil, "Price must be a non-negative number."
	}
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 0 {
		return nil, "Quantity must be a non-negative whole number."
	}
	category := strings.TrimSpace(r.FormValue("category"))
	if category == "" {
		category = strings.TrimSpace(r.FormValue("currentCategory"))
	}
	if category == "" {
		category = "General"
	}
	return &models.Product{
		Name:     name,
		Price:    price,
		Quantity: quantity,
		Category: category,
	}, ""
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 10MB."})
		session.Save(r, w)
		http.Redirect(w, r, "/products/add", http.StatusSeeOther)
		return
	}

	product, msg := parseProductForm(r)
	if msg != "" {
		session.AddFlash(FlashMessage{Type: "error", Message: msg})
		session.Save(r, w)
		http.Redirect(w, r, "/products/add", http.StatusSeeOther)
		return
	}

	imageURL, err := saveProductImage(r, h.UploadDir)
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: uploadErrorMessage(err)})
		session.Save(r, w)
		http.Redirect(w, r, "/products/add", http.StatusSeeOther)
		return
	}
	product.Image = imageURL

	if err := h.Store.CreateProduct(product); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving product."})
		session.Save(r, w)
		http.Redirect(w, r, "/products/add", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Product added successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/inventory", http.StatusSeeOther)
}

func (h *AdminHandler) UpdateProductForm(w http.ResponseWriter, r *http.Request) {
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
	categories, err := h.Store.DistinctCategories()
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("updateProduct.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	user, _ := CurrentUser(session)
	data := map[string]interface{}{
		"Product":    product,
		"Categories": categories,
		"User":       user,
		"CsrfField":  csrf.TemplateField(r),
		"Flashes":    GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 10MB."})
		session.Save(r, w)
		http.Redirect(w, r, fmt.Sprintf("/products/update/%d", id), http.StatusSeeOther)
		return
	}

	product, msg := parseProductForm(r)
	if msg != "" {
		session.AddFlash(FlashMessage{Type: "error", Message: msg})
		session.Save(r, w)
		http.Redirect(w, r, fmt.Sprintf("/products/update/%d", id), http.StatusSeeOther)
		return
	}
	product.ID = id

	// A fresh upload replaces the image; otherwise the existing one is kept.
	imageURL, err := saveProductImage(r, h.UploadDir)
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: uploadErrorMessage(err)})
		session.Save(r, w)
		http.Redirect(w, r, fmt.Sprintf("/products/update/%d", id), http.StatusSeeOther)
		return
	}
	if imageURL == "" {
		imageURL = r.FormValue("currentImage")
	}
	product.Image = imageURL

	if err := h.Store.UpdateProduct(product); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			session.AddFlash(FlashMessage{Type: "error", Message: "Product not found"})
		} else {
			session.AddFlash(FlashMessage{Type: "error", Message: "Error updating product."})
		}
		session.Save(r, w)
		http.Redirect(w, r, "/inventory", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Product updated successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/inventory", http.StatusSeeOther)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteProduct(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			session.AddFlash(FlashMessage{Type: "error", Message: "Product not found"})
		} else {
			session.AddFlash(FlashMessage{Type: "error", Message: "Error deleting product."})
		}
		session.Save(r, w)
		http.Redirect(w, r, "/inventory", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Product deleted successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/inventory", http.StatusSeeOther)
}

func uploadErrorMessage(err error) string {
	if errors.Is(err, errUnsupportedImage) {
		return errUnsupportedImage.Error()
	}
	return "Error processing image upload."
}
