package store

import (
	"database/sql"
	"errors"

	"github.com/zasious/supermarketMVC/internal/models"
)

const productColumns = `id, name, price, quantity, category, COALESCE(image, '') as image, created_at`

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()
	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.Category, &p.Image, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) AllProducts() ([]models.Product, error) {
	rows, err := s.DB.Query(`SELECT ` + productColumns + ` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// SearchProducts matches term as a case-insensitive substring of the
// product name or category. An empty term lists everything.
func (s *Store) SearchProducts(term string) ([]models.Product, error) {
	if term == "" {
		return s.AllProducts()
	}
	like := "%" + term + "%"
	rows, err := s.DB.Query(
		`SELECT `+productColumns+` FROM products WHERE name LIKE ? OR category LIKE ? ORDER BY id`,
		like, like)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (s *Store) ProductByID(id int) (*models.Product, error) {
	var p models.Product
	err := s.DB.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.Category, &p.Image, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) DistinctCategories() ([]string, error) {
	rows, err := s.DB.Query(`SELECT DISTINCT category FROM products WHERE category != '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// RatingSummary returns the review average (rounded to one decimal) and
// count per product, keyed by product id.
func (s *Store) RatingSummary() (map[int]models.RatingSummary, error) {
	rows, err := s.DB.Query(`
		SELECT product_id, ROUND(AVG(rating), 1), COUNT(*)
		FROM reviews
		GROUP BY product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make(map[int]models.RatingSummary)
	for rows.Next() {
		var rs models.RatingSummary
		if err := rows.Scan(&rs.ProductID, &rs.AvgRating, &rs.ReviewCount); err != nil {
			return nil, err
		}
		summaries[rs.ProductID] = rs
	}
	return summaries, rows.Err()
}

func (s *Store) ReviewsForProduct(productID int) ([]models.Review, error) {
	rows, err := s.DB.Query(`
		SELECT r.id, r.order_id, r.product_id, r.user_id, u.username, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = ?
		ORDER BY r.created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows)
}

func (s *Store) CreateProduct(p *models.Product) error {
	res, err := s.DB.Exec(`
		INSERT INTO products (name, price, quantity, category, image, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		p.Name, p.Price, p.Quantity, p.Category, p.Image)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = int(id)
	return nil
}

func (s *Store) UpdateProduct(p *models.Product) error {
	res, err := s.DB.Exec(`
		UPDATE products SET name = ?, price = ?, quantity = ?, category = ?, image = ?
		WHERE id = ?`,
		p.Name, p.Price, p.Quantity, p.Category, p.Image, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(id int) error {
	res, err := s.DB.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
