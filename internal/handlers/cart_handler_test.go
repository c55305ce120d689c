package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/zasious/supermarketMVC/internal/models"
	"github.com/zasious/supermarketMVC/internal/store"
)

func newHandlerStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.DB.SetMaxOpenConns(1)
	if err := s.Migrate("../../migrations"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCheckoutEmptySelectionJSON(t *testing.T) {
	s := newHandlerStore(t)
	cs := testSessionStore()
	h := &CartHandler{Store: s, SessionStore: cs}

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: "user"}
	if err := s.CreateUser(user); err != nil {
		t.Fatal(err)
	}

	r := requestWithSession(t, cs, "/cart/checkout", &SessionUser{ID: user.ID, Username: "alice", Role: "user"})
	r.Method = http.MethodPost
	r.Header.Set("Accept", "application/json")
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Body = http.NoBody

	w := httptest.NewRecorder()
	h.Checkout(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Message == "" {
		t.Errorf("body = %+v, want a failure message", body)
	}
}

func TestCheckoutSuccessJSON(t *testing.T) {
	s := newHandlerStore(t)
	cs := testSessionStore()
	h := &CartHandler{Store: s, SessionStore: cs}

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: "user"}
	if err := s.CreateUser(user); err != nil {
		t.Fatal(err)
	}
	product := &models.Product{Name: "Milk", Price: 10.00, Quantity: 5, Category: "Dairy"}
	if err := s.CreateProduct(product); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOrIncrement(user.ID, product.ID, 2); err != nil {
		t.Fatal(err)
	}

	form := url.Values{"selectedProducts": {strconv.Itoa(product.ID)}}
	r := requestWithSession(t, cs, "/cart/checkout", &SessionUser{ID: user.ID, Username: "alice", Role: "user"})
	r.Method = http.MethodPost
	r.Header.Set("X-Requested-With", "XMLHttpRequest")
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Body = io.NopCloser(strings.NewReader(form.Encode()))

	w := httptest.NewRecorder()
	h.Checkout(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	var body struct {
		Success  bool   `json:"success"`
		OrderID  int    `json:"orderId"`
		Redirect string `json:"redirect"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.OrderID == 0 {
		t.Fatalf("body = %+v, want success with an order id", body)
	}
	if !strings.HasPrefix(body.Redirect, "/orders/") || !strings.Contains(body.Redirect, "from=checkout") {
		t.Errorf("redirect = %q, want an order detail URL with checkout marker", body.Redirect)
	}
}
