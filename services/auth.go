package services

import (
	"database/sql"
	"fmt"

	"Bingearr/database"
	"Bingearr/models"

	"golang.org/x/crypto/bcrypt"
)

func AuthenticateAccount(username, password string) (*models.Account, error) {
	var account models.Account
	err := database.DB.QueryRow(
		"SELECT id, username, email, password_hash, is_admin, created_at, updated_at FROM accounts WHERE username = $1",
		username,
	).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.IsAdmin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &account, nil
}

// RegisterAccount creates an account plus its default profile, so a fresh
// account can favorite content immediately.
func RegisterAccount(username, email, password string) (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var account models.Account
	err = database.DB.QueryRow(
		"INSERT INTO accounts (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, username, email, password_hash, is_admin, created_at, updated_at",
		username, email, string(hashedPassword),
	).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.IsAdmin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	_, err = database.DB.Exec(
		"INSERT INTO profiles (account_id, name) VALUES ($1, $2)",
		account.ID, account.Username,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default profile: %w", err)
	}

	return &account, nil
}

func GetAccountByID(accountID int) (*models.Account, error) {
	var account models.Account
	err := database.DB.QueryRow(
		"SELECT id, username, email, password_hash, is_admin, created_at, updated_at FROM accounts WHERE id = $1",
		accountID,
	).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.IsAdmin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("account not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &account, nil
}
