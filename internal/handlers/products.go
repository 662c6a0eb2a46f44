// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"apothek/internal/store"
)

// Products serves the public product listing.
type Products struct {
	products   *store.ProductStore
	categories *store.CategoryStore
}

// NewProducts creates a new Products handler group.
func NewProducts(products *store.ProductStore, categories *store.CategoryStore) *Products {
	return &Products{products: products, categories: categories}
}

// List handles GET /api/products. An optional ?category=slug query
// parameter filters to a single category.
func (h *Products) List(w http.ResponseWriter, r *http.Request) {
	catSlug := r.URL.Query().Get("category")
	if catSlug == "" {
		items, err := h.products.List()
		if err != nil {
			slog.Error("product list failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		respondData(w, http.StatusOK, items)
		return
	}

	cat, err := h.categories.FindBySlug(catSlug)
	if err != nil {
		slog.Error("category lookup failed", "slug", catSlug, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if cat == nil {
		respondError(w, http.StatusNotFound, "Category not found.")
		return
	}

	items, err := h.products.ListByCategory(cat.ID)
	if err != nil {
		slog.Error("product list by category failed", "slug", catSlug, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(w, http.StatusOK, items)
}
