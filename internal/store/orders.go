package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/zasious/supermarketMVC/internal/models"
)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// CreateOrderFromCart converts the user's selected cart lines into a
// persisted order inside a single transaction: it snapshots each line's
// price, decrements stock with a guarded update, and removes exactly the
// checked-out lines. Any failure rolls back everything.
//
// The per-line stock validation before the insert is an optimistic
// pre-check for a fast user-facing error; the guarded decrement is the
// authoritative check under concurrent checkouts.
func (s *Store) CreateOrderFromCart(userID int, productIDs []int) (int, error) {
	if len(productIDs) == 0 {
		return 0, ErrEmptySelection
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	args := make([]interface{}, 0, len(productIDs)+1)
	args = append(args, userID)
	for _, id := range productIDs {
		args = append(args, id)
	}

	rows, err := tx.Query(`
		SELECT ci.product_id, ci.quantity, p.price, p.name, p.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ? AND ci.product_id IN (`+placeholders(len(productIDs))+`)`, args...)
	if err != nil {
		return 0, err
	}

	type line struct {
		productID int
		quantity  int
		price     float64
		name      string
		stock     int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity, &l.price, &l.name, &l.stock); err != nil {
			rows.Close()
			return 0, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}

	var total float64
	for _, l := range lines {
		if l.quantity > l.stock {
			return 0, &InsufficientStockError{Product: l.name}
		}
		total += l.price * float64(l.quantity)
	}

	res, err := tx.Exec(`INSERT INTO orders (user_id, total_amount, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		userID, total)
	if err != nil {
		return 0, err
	}
	orderID64, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	orderID := int(orderID64)

	itemSQL := `INSERT INTO order_items (order_id, user_id, product_id, quantity, price) VALUES ` +
		strings.TrimSuffix(strings.Repeat("(?, ?, ?, ?, ?),", len(lines)), ",")
	itemArgs := make([]interface{}, 0, len(lines)*5)
	for _, l := range lines {
		itemArgs = append(itemArgs, orderID, userID, l.productID, l.quantity, l.price)
	}
	if _, err := tx.Exec(itemSQL, itemArgs...); err != nil {
		return 0, err
	}

	for _, l := range lines {
		res, err := tx.Exec(`UPDATE products SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
			l.quantity, l.productID, l.quantity)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			// Lost the stock race to a concurrent checkout.
			return 0, &InsufficientStockError{Product: l.name}
		}
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE user_id = ? AND product_id IN (`+placeholders(len(productIDs))+`)`,
		args...); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit checkout: %w", err)
	}
	return orderID, nil
}

const orderRowColumns = `
	o.id, o.created_at, o.total_amount,
	u.id, u.username, u.email,
	oi.product_id, p.name, oi.quantity, oi.price`

// scanOrderRows groups a flat orders/order_items join into Order values,
// preserving the query's order ordering.
func scanOrderRows(rows *sql.Rows) ([]models.Order, error) {
	defer rows.Close()

	var orders []models.Order
	index := make(map[int]int)
	for rows.Next() {
		var (
			o  models.Order
			it models.OrderItem
		)
		if err := rows.Scan(&o.ID, &o.CreatedAt, &o.TotalAmount,
			&o.UserID, &o.Username, &o.Email,
			&it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		i, ok := index[o.ID]
		if !ok {
			i = len(orders)
			index[o.ID] = i
			orders = append(orders, o)
		}
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, rows.Err()
}

func (s *Store) OrdersByUser(userID int) ([]models.Order, error) {
	rows, err := s.DB.Query(`
		SELECT `+orderRowColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE o.user_id = ?
		ORDER BY o.created_at DESC, o.id DESC, oi.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	return scanOrderRows(rows)
}

func (s *Store) AllOrdersWithUsers() ([]models.Order, error) {
	rows, err := s.DB.Query(`
		SELECT ` + orderRowColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		ORDER BY o.created_at DESC, o.id DESC, oi.id ASC`)
	if err != nil {
		return nil, err
	}
	return scanOrderRows(rows)
}

// OrderForUser fetches one order with its items, scoped to the owning
// user. Returns ErrNotFound if the order does not exist or belongs to
// someone else.
func (s *Store) OrderForUser(orderID, userID int) (*models.Order, error) {
	rows, err := s.DB.Query(`
		SELECT `+orderRowColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE o.id = ? AND o.user_id = ?
		ORDER BY oi.id ASC`, orderID, userID)
	if err != nil {
		return nil, err
	}
	orders, err := scanOrderRows(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	return &orders[0], nil
}

func scanReviews(rows *sql.Rows) ([]models.Review, error) {
	defer rows.Close()
	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.OrderID, &r.ProductID, &r.UserID, &r.Username, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *Store) ReviewsForOrder(orderID int) ([]models.Review, error) {
	rows, err := s.DB.Query(`
		SELECT r.id, r.order_id, r.product_id, r.user_id, u.username, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.order_id = ?
		ORDER BY r.created_at DESC`, orderID)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows)
}

func (s *Store) ReviewsForOrders(orderIDs []int) ([]models.Review, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}
	rows, err := s.DB.Query(`
		SELECT r.id, r.order_id, r.product_id, r.user_id, u.username, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.order_id IN (`+placeholders(len(orderIDs))+`)
		ORDER BY r.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows)
}

// AddOrUpdateReview upserts on the (order, product, user) key; a second
// submission replaces the first. Order ownership is checked by the
// caller before invoking.
func (s *Store) AddOrUpdateReview(orderID, productID, userID, rating int, comment string) error {
	_, err := s.DB.Exec(`
		INSERT INTO reviews (order_id, product_id, user_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (order_id, product_id, user_id)
		DO UPDATE SET rating = excluded.rating, comment = excluded.comment, created_at = CURRENT_TIMESTAMP`,
		orderID, productID, userID, rating, comment)
	return err
}
