package store

import (
	"database/sql"
	"errors"

	"github.com/zasious/supermarketMVC/internal/models"
)

// EnsureCart creates the user's cart container if it does not exist.
// Safe to call on every cart-touching request.
func (s *Store) EnsureCart(userID int) error {
	_, err := s.DB.Exec(`INSERT OR IGNORE INTO cart (user_id, created_at) VALUES (?, CURRENT_TIMESTAMP)`, userID)
	return err
}

// CartItems lists the user's cart lines joined with current product data.
func (s *Store) CartItems(userID int) ([]models.CartItem, error) {
	rows, err := s.DB.Query(`
		SELECT ci.product_id, p.name, ci.quantity, p.price, COALESCE(p.image, ''), p.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ?
		ORDER BY ci.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.Price, &it.Image, &it.Stock); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddOrIncrement adds qty of a product to the cart, incrementing an
// existing line. The stock check here is an optimistic pre-check; the
// checkout transaction re-validates with a guarded decrement.
func (s *Store) AddOrIncrement(userID, productID, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	var stock, cartQty int
	err := s.DB.QueryRow(`
		SELECT p.quantity, COALESCE(ci.quantity, 0)
		FROM products p
		LEFT JOIN cart_items ci ON ci.product_id = p.id AND ci.user_id = ?
		WHERE p.id = ?`, userID, productID).Scan(&stock, &cartQty)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if stock <= 0 {
		return ErrOutOfStock
	}
	if cartQty+qty > stock {
		return ErrInsufficientStock
	}

	if cartQty > 0 {
		_, err = s.DB.Exec(`UPDATE cart_items SET quantity = quantity + ? WHERE user_id = ? AND product_id = ?`,
			qty, userID, productID)
		return err
	}
	_, err = s.DB.Exec(`INSERT INTO cart_items (user_id, product_id, quantity, added_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		userID, productID, qty)
	return err
}

// UpdateQuantity overwrites a cart line's quantity. A quantity of zero
// or less removes the line.
func (s *Store) UpdateQuantity(userID, productID, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(userID, productID)
	}

	var stock int
	err := s.DB.QueryRow(`SELECT quantity FROM products WHERE id = ?`, productID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if qty > stock {
		return ErrInsufficientStock
	}

	_, err = s.DB.Exec(`UPDATE cart_items SET quantity = ? WHERE user_id = ? AND product_id = ?`,
		qty, userID, productID)
	return err
}

func (s *Store) RemoveItem(userID, productID int) error {
	_, err := s.DB.Exec(`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	return err
}

func (s *Store) ClearCart(userID int) error {
	_, err := s.DB.Exec(`DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
