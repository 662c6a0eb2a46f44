// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache for the public category tree.
// The serialized JSON response is stored so the storefront's most frequent
// request skips the database entirely. Every taxonomy mutation invalidates
// the entry.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// treeKey is the Valkey key holding the serialized category tree.
	treeKey = "catalog:tree"

	// DefaultTreeTTL bounds staleness if an invalidation is ever missed.
	DefaultTreeTTL = 5 * time.Minute
)

// CatalogCache manages the cached category tree in Valkey.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a catalog cache backed by the given Valkey client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultTreeTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// GetTree retrieves the cached category tree JSON. Returns false on miss.
func (c *CatalogCache) GetTree(ctx context.Context) ([]byte, bool) {
	val, err := c.client.Get(ctx, treeKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "error", err)
		return nil, false
	}
	return val, true
}

// SetTree stores the serialized category tree with the configured TTL.
func (c *CatalogCache) SetTree(ctx context.Context, payload []byte) {
	if err := c.client.Set(ctx, treeKey, payload, c.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "error", err)
	}
}

// InvalidateTree drops the cached tree. Called after every category
// create, update, delete, or image change.
func (c *CatalogCache) InvalidateTree(ctx context.Context) {
	if err := c.client.Del(ctx, treeKey).Err(); err != nil {
		slog.Warn("catalog cache invalidate error", "error", err)
	}
	slog.Debug("catalog cache invalidated")
}
