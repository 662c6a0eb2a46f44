package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and a small starter taxonomy. It is a no-op when users
// already exist. The admin will be prompted to set up 2FA on first login.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@apothek.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Starter taxonomy: two main categories, one with subcategories.
	if err := seedCategories(db); err != nil {
		return err
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@apothek.local",
		"password", "admin",
	)

	return nil
}

// seedCategories inserts a small two-level category tree for development.
func seedCategories(db *sql.DB) error {
	var hygieneID string
	err := db.QueryRow(`
		INSERT INTO categories (name, slug, description)
		VALUES ('Hygiène', 'hygiene', 'Produits d''hygiène quotidienne')
		RETURNING id
	`).Scan(&hygieneID)
	if err != nil {
		return fmt.Errorf("seed category hygiene: %w", err)
	}

	subs := []struct{ name, slug string }{
		{"Dentifrices", "dentifrices"},
		{"Savons", "savons"},
	}
	for _, s := range subs {
		if _, err := db.Exec(`
			INSERT INTO categories (name, slug, parent_id)
			VALUES ($1, $2, $3)
		`, s.name, s.slug, hygieneID); err != nil {
			return fmt.Errorf("seed subcategory %s: %w", s.slug, err)
		}
	}

	_, err = db.Exec(`
		INSERT INTO categories (name, slug, description)
		VALUES ('Compléments Alimentaires', 'complements-alimentaires', 'Vitamines et minéraux')
	`)
	if err != nil {
		return fmt.Errorf("seed category complements: %w", err)
	}

	return nil
}
