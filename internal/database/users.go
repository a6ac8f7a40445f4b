package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrUserNotFound is returned when a lookup matches no user.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameTaken is returned when registration hits a duplicate
// username.
var ErrUsernameTaken = errors.New("username already taken")

// User is an account row. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
}

// CreateUser inserts a new account.
func CreateUser(ctx context.Context, username, displayName, passwordHash string) (User, error) {
	u := User{Username: username, DisplayName: displayName, PasswordHash: passwordHash}
	if Pool == nil {
		return u, fmt.Errorf("database not connected")
	}
	err := Pool.QueryRow(ctx, `
		INSERT INTO users (username, display_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
		RETURNING id`,
		username, displayName, passwordHash,
	).Scan(&u.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrUsernameTaken
	}
	if err != nil {
		return u, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUserByUsername fetches an account for login.
func GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	if Pool == nil {
		return u, fmt.Errorf("database not connected")
	}
	err := Pool.QueryRow(ctx, `
		SELECT id, username, display_name, password_hash
		FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrUserNotFound
	}
	if err != nil {
		return u, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}
