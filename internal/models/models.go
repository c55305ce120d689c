package models

import (
	"time"
)

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash
	Address   string    `json:"address"`
	Contact   string    `json:"contact"`
	Role      string    `json:"role"` // "user" or "admin"
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

type Product struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"` // stock on hand, never negative
	Category  string    `json:"category"`
	Image     string    `json:"image"` // optional upload path, "" if none
	CreatedAt time.Time `json:"created_at"`

	// Filled from the reviews aggregate for listing pages.
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

// CartItem is one (user, product) cart line joined with current product
// data for display and stock checks.
type CartItem struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock"`
}

type Order struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	Username    string      `json:"username"` // for display convenience
	Email       string      `json:"email"`
	TotalAmount float64     `json:"total_amount"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []OrderItem `json:"items"`
	Reviews     []Review    `json:"reviews,omitempty"`
}

// OrderItem carries the price copied at checkout time, decoupled from
// later product price edits.
type OrderItem struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type Review struct {
	ID        int       `json:"id"`
	OrderID   int       `json:"order_id"`
	ProductID int       `json:"product_id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingSummary is the per-product review aggregate shown on listing pages.
type RatingSummary struct {
	ProductID   int     `json:"product_id"`
	AvgRating   float64 `json:"avg_rating"` // rounded to one decimal
	ReviewCount int     `json:"review_count"`
}
