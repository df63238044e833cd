package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mvannier-2004/rummy500-multiplayer/internal/auth"
	"github.com/mvannier-2004/rummy500-multiplayer/internal/models"
)

// CreateUser inserts a new user row, hashing the password when one is set.
// Ephemeral guests carry no credentials.
func CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate user id: %w", err)
		}
		u.ID = id
	}

	hashed := ""
	if u.Password != "" {
		var err error
		hashed, err = auth.CreateHash(u.Password, auth.Params)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}

	q := `
		INSERT INTO users (id, email, password, username, is_ephemeral)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := DB.Exec(ctx, q, u.ID, u.Email, hashed, u.Username, u.IsEphemeral); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.Password = ""
	return nil
}

// GetUserByID fetches one user row by primary key.
func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT id, email, username, is_ephemeral FROM users WHERE id = $1`
	var u models.User
	if err := DB.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Username, &u.IsEphemeral); err != nil {
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}
	return &u, nil
}

// AuthenticateUser verifies an email/password pair against the stored
// argon2id hash and returns the matching user.
func AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	q := `SELECT id, email, password, username, is_ephemeral FROM users WHERE email = $1`
	var u models.User
	var hash string
	if err := DB.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &hash, &u.Username, &u.IsEphemeral); err != nil {
		return nil, fmt.Errorf("select user by email: %w", err)
	}

	ok, err := auth.ComparePasswordAndHash(password, hash)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("invalid credentials")
	}
	u.Password = ""
	return &u, nil
}

// ClaimEphemeralUser upgrades a guest account with real credentials.
func ClaimEphemeralUser(ctx context.Context, u *models.User) error {
	hashed, err := auth.CreateHash(u.Password, auth.Params)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	q := `
		UPDATE users
		SET email = $1, password = $2, username = $3, is_ephemeral = FALSE
		WHERE id = $4 AND is_ephemeral = TRUE
	`
	tag, err := DB.Exec(ctx, q, u.Email, hashed, u.Username, u.ID)
	if err != nil {
		return fmt.Errorf("claim ephemeral user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s is not ephemeral", u.ID)
	}
	u.Password = ""
	u.IsEphemeral = false
	return nil
}
