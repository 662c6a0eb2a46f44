// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"apothek/internal/models"
)

// ProductStore handles read access to the product catalog. Product writes
// come from the import pipeline, not this service.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, slug, price_cents, category_id, image, in_stock, created_at, updated_at`

// List returns all products ordered by name.
func (s *ProductStore) List() ([]models.Product, error) {
	rows, err := s.db.Query(`SELECT ` + productColumns + ` FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ListByCategory returns the products assigned to the given category,
// ordered by name. Products whose category was deleted have a NULL
// category_id and never match.
func (s *ProductStore) ListByCategory(categoryID uuid.UUID) ([]models.Product, error) {
	rows, err := s.db.Query(`
		SELECT `+productColumns+` FROM products WHERE category_id = $1 ORDER BY name
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var items []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.PriceCents,
			&p.CategoryID, &p.Image, &p.InStock, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
