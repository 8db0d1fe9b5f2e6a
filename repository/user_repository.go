// Package repository provides data access layer for the video library.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"videolib/database"
	"videolib/models"
)

// ErrUserNotFound is returned when no matching active user exists.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetActiveByID retrieves an active user by id. Inactive accounts are treated
// as missing so a disabled user's session stops working immediately.
func (r *UserRepository) GetActiveByID(id int) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, email, created_at, is_active
		FROM users
		WHERE id = ? AND is_active = TRUE
	`
	return r.scanUser(r.db.QueryRow(query, id))
}

// FindActiveByUsername retrieves an active user by username for login.
func (r *UserRepository) FindActiveByUsername(username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, email, created_at, is_active
		FROM users
		WHERE username = ? AND is_active = TRUE
	`
	return r.scanUser(r.db.QueryRow(query, username))
}

// UsernameExists reports whether any account (active or not) holds the username.
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var id int
	err := r.db.QueryRow(`SELECT id FROM users WHERE username = ?`, username).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return true, nil
}

// Create inserts a new user with an already-hashed password.
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, email)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, user.Username, user.PasswordHash, nullString(user.Email))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	user.CreatedAt = time.Now()
	user.IsActive = true
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var email sql.NullString

	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash,
		&email, &user.CreatedAt, &user.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if email.Valid {
		user.Email = email.String
	}

	return &user, nil
}

// Helper functions for handling null values
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(i int) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: int64(i), Valid: true}
}
