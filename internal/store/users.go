package store

import (
	"database/sql"
	"errors"

	"github.com/zasious/supermarketMVC/internal/models"
)

func (s *Store) UserByEmail(email string) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRow(`
		SELECT id, username, email, password, COALESCE(address, ''), COALESCE(contact, ''), role, created_at
		FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Address, &u.Contact, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts the user (password already hashed) and provisions
// the empty cart in the same statement sequence registration expects.
func (s *Store) CreateUser(u *models.User) error {
	res, err := s.DB.Exec(`
		INSERT INTO users (username, email, password, address, contact, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		u.Username, u.Email, u.Password, u.Address, u.Contact, u.Role)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = int(id)
	return s.EnsureCart(u.ID)
}

func (s *Store) AllUsers() ([]models.User, error) {
	rows, err := s.DB.Query(`
		SELECT id, username, email, COALESCE(address, ''), COALESCE(contact, ''), role, created_at
		FROM users ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Address, &u.Contact, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user account. An admin may never delete itself.
func (s *Store) DeleteUser(targetID, actingID int) error {
	if targetID == actingID {
		return ErrSelfDelete
	}
	res, err := s.DB.Exec(`DELETE FROM users WHERE id = ?`, targetID)
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
