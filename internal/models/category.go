// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PlaceholderImage is the image path assigned to every newly created
// category until an image is uploaded for it.
const PlaceholderImage = "/pharmacy-category.jpg"

// Category represents a node in the two-level product taxonomy.
// A category with no parent is a main category; one with a parent is a
// subcategory of exactly that main category.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
	Image       string     `json:"image"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// ProductCount is denormalized: set to 0 on creation and maintained
	// by the product import pipeline, never recomputed here.
	ProductCount int `json:"productCount"`

	// Children is virtual, populated by CategoryStore.Tree. Never an
	// update target.
	Children []Category `json:"children,omitempty"`
}

// IsMain returns true if the category has no parent.
func (c *Category) IsMain() bool {
	return c.ParentID == nil
}
