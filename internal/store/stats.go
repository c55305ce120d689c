package store

import (
	"database/sql"

	"github.com/zasious/supermarketMVC/internal/models"
)

type DashboardStats struct {
	InventoryCount int
	UserCount      int
	OrderCount     int
	Revenue        float64
	RecentOrders   []models.Order
}

// DashboardStats gathers the read-only counts for the admin dashboard:
// product and user totals, order count plus revenue sum, and the five
// most recent orders with their owning username.
func (s *Store) DashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&stats.InventoryCount); err != nil {
		return nil, err
	}
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&stats.UserCount); err != nil {
		return nil, err
	}
	err := s.DB.QueryRow(`SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders`).
		Scan(&stats.OrderCount, &stats.Revenue)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := s.DB.Query(`
		SELECT o.id, o.created_at, o.total_amount, u.username
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.CreatedAt, &o.TotalAmount, &o.Username); err != nil {
			return nil, err
		}
		stats.RecentOrders = append(stats.RecentOrders, o)
	}
	return stats, rows.Err()
}
