package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spinode/spinode/internal/auth"
)

// ErrUserExists is returned when creating a username that is already taken.
var ErrUserExists = errors.New("user already exists")

// CreateUser stores a new user. It implements auth.Store.
func (d *DB) CreateUser(u auth.User) error {
	existing, err := d.GetUser(u.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrUserExists, u.Username)
	}

	_, err = d.db.Exec(`
		INSERT INTO users (username, password_hash, is_admin, created_at, last_login_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.Username, u.PasswordHash, boolToInt(u.IsAdmin), nullableString(u.CreatedAt), nullableString(u.LastLoginAt))
	if err != nil {
		return fmt.Errorf("creating user %s: %w", u.Username, err)
	}
	return nil
}

// GetUser returns the user with the given name, or nil if there is none.
func (d *DB) GetUser(username string) (*auth.User, error) {
	var u auth.User
	var isAdmin int
	var created, lastLogin sql.NullString
	err := d.db.QueryRow(`
		SELECT username, password_hash, is_admin, created_at, last_login_at
		FROM users WHERE username = ?
	`, username).Scan(&u.Username, &u.PasswordHash, &isAdmin, &created, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user %s: %w", username, err)
	}
	u.IsAdmin = isAdmin != 0
	u.CreatedAt = created.String
	u.LastLoginAt = lastLogin.String
	return &u, nil
}

// TouchLogin records a successful login time.
func (d *DB) TouchLogin(username, at string) error {
	if _, err := d.db.Exec(`UPDATE users SET last_login_at = ? WHERE username = ?`, at, username); err != nil {
		return fmt.Errorf("recording login for %s: %w", username, err)
	}
	return nil
}

var _ auth.Store = (*DB)(nil)
