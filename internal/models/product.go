// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item. CategoryID is nullable: deleting a category
// leaves its products uncategorized rather than deleting them.
type Product struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	PriceCents int64      `json:"priceCents"`
	CategoryID *uuid.UUID `json:"categoryId"`
	Image      string     `json:"image"`
	InStock    bool       `json:"inStock"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
