package store

import (
	"testing"

	"github.com/zasious/supermarketMVC/internal/models"
)

// newTestStore opens an in-memory database with the full schema applied.
// A single connection keeps the :memory: database alive across queries.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
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

func seedUser(t *testing.T, s *Store, username, role string) int {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := s.CreateUser(u); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u.ID
}

func seedProduct(t *testing.T, s *Store, name string, price float64, stock int, category string) int {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Price:    price,
		Quantity: stock,
		Category: category,
	}
	if err := s.CreateProduct(p); err != nil {
		t.Fatalf("CreateProduct(%s): %v", name, err)
	}
	return p.ID
}

func stockOf(t *testing.T, s *Store, productID int) int {
	t.Helper()
	p, err := s.ProductByID(productID)
	if err != nil {
		t.Fatalf("ProductByID(%d): %v", productID, err)
	}
	return p.Quantity
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
