package database

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdminAccount creates the initial admin account and its default profile
// when ADMIN_PASSWORD is set and no such account exists yet.
func SeedAdminAccount() error {
	adminUsername := getenv("ADMIN_USERNAME", "admin")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminEmail := getenv("ADMIN_EMAIL", "admin@bingearr.local")

	if adminPassword == "" {
		return nil
	}

	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM accounts WHERE username = $1", adminUsername).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check for existing admin account: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var accountID int
	err = DB.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, is_admin) VALUES ($1, $2, $3, TRUE) RETURNING id",
		adminUsername, adminEmail, string(hashedPassword),
	).Scan(&accountID)
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	_, err = DB.Exec(
		"INSERT INTO profiles (account_id, name) VALUES ($1, $2)",
		accountID, adminUsername,
	)
	if err != nil {
		return fmt.Errorf("failed to seed admin profile: %w", err)
	}

	return nil
}

func getenv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
