// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"apothek/internal/cache"
	"apothek/internal/middleware"
	"apothek/internal/models"
	"apothek/internal/slug"
	"apothek/internal/storage"
	"apothek/internal/store"
)

// Categories groups the category handlers: the public tree endpoint and
// the admin management surface.
type Categories struct {
	categories *store.CategoryStore
	users      *store.UserStore
	catalog    *cache.CatalogCache
	storage    *storage.Client // nil when object storage is not configured
}

// NewCategories creates a new Categories handler group.
func NewCategories(categories *store.CategoryStore, users *store.UserStore, catalog *cache.CatalogCache, storageClient *storage.Client) *Categories {
	return &Categories{
		categories: categories,
		users:      users,
		catalog:    catalog,
		storage:    storageClient,
	}
}

// categoryRequest is the JSON payload for create and update. ParentID is
// a string so clients can send a UUID, null, "" or the "none" sentinel.
type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ParentID    string `json:"parentId"`
}

// Tree serves the public two-level category tree, cached in Valkey.
// The cached value is the full response body, so hits skip both the
// database and JSON encoding.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := h.catalog.GetTree(ctx); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	tree, err := h.categories.Tree()
	if err != nil {
		slog.Error("category tree query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	payload, err := json.Marshal(tree)
	if err != nil {
		slog.Error("category tree encode failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var buf bytes.Buffer
	buf.WriteString(`{"success":true,"data":`)
	buf.Write(payload)
	buf.WriteString("}")

	h.catalog.SetTree(ctx, buf.Bytes())

	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

// Create handles POST /api/admin/categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if msg := validateCategory(req.Name, req.Slug, req.Description); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	parentID, errMsg := h.resolveParent(req.ParentID, uuid.Nil)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	cat := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slugOrGenerate(req.Slug, req.Name),
		Description: req.Description,
		ParentID:    parentID,
	}

	created, err := h.categories.Create(cat)
	if err != nil {
		slog.Warn("category create failed", "name", cat.Name, "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.catalog.InvalidateTree(r.Context())
	respondData(w, http.StatusOK, created)
}

// Update handles PUT /api/admin/categories/{id}.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if msg := validateCategory(req.Name, req.Slug, req.Description); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	parentID, errMsg := h.resolveParent(req.ParentID, id)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	// Demoting a main category that still has subcategories would push
	// its children to a third level.
	if parentID != nil {
		hasChildren, err := h.categories.HasChildren(id)
		if err != nil {
			slog.Error("subcategory lookup failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if hasChildren {
			respondError(w, http.StatusBadRequest, "A category with subcategories cannot become a subcategory.")
			return
		}
	}

	cat := &models.Category{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Slug:        slugOrGenerate(req.Slug, req.Name),
		Description: req.Description,
		ParentID:    parentID,
	}

	updated, err := h.categories.Update(cat)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Category not found.")
			return
		}
		slog.Warn("category update failed", "id", id, "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.catalog.InvalidateTree(r.Context())
	respondData(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/admin/categories/{id}. Direct subcategories
// are removed in the same transaction as the category itself.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	if err := h.categories.Delete(id); err != nil {
		slog.Warn("category delete failed", "id", id, "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.catalog.InvalidateTree(r.Context())
	respondOK(w)
}

// maxImageSize caps category image uploads (5 MB).
const maxImageSize = 5 << 20

// allowedImageTypes are MIME types accepted for category images.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadImage handles POST /api/admin/categories/{id}/image. The file is
// stored in the public S3 bucket and the category's image URL updated.
func (h *Categories) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	if h.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	cat, err := h.categories.FindByID(id)
	if err != nil {
		slog.Error("category lookup failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if cat == nil {
		respondError(w, http.StatusNotFound, "Category not found.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1024)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 5 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	// Sniff the real content type; the client-provided header is not trusted.
	sniffBuf := make([]byte, 512)
	n, _ := file.Read(sniffBuf)
	contentType := http.DetectContentType(sniffBuf[:n])
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		respondError(w, http.StatusBadRequest, "Unsupported image type. Use JPEG, PNG, or WebP.")
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		slog.Error("upload seek failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	key := path.Join("categories", id.String()+ext)
	if err := h.storage.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		slog.Error("category image upload failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	// Remove the previous image if it lived in our bucket under a
	// different key (extension changed).
	if oldKey, ok := h.storage.ExtractKey(cat.Image); ok && oldKey != key {
		if err := h.storage.Delete(r.Context(), oldKey); err != nil {
			slog.Warn("old category image delete failed", "key", oldKey, "error", err)
		}
	}

	url := h.storage.FileURL(key)
	if err := h.categories.SetImage(id, url); err != nil {
		slog.Error("category image update failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.catalog.InvalidateTree(r.Context())

	updated, err := h.categories.FindByID(id)
	if err != nil || updated == nil {
		respondData(w, http.StatusOK, map[string]string{"image": url})
		return
	}
	respondData(w, http.StatusOK, updated)
}

// requireAdmin enforces the mutating-endpoint authorization gate: a valid
// session AND a live admin role. The role comes from the users table, not
// the session snapshot, so a revoked admin is denied immediately. Writes
// the error response and returns false when the caller is not an admin.
func (h *Categories) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}

	user, err := h.users.FindByID(sess.UserID)
	if err != nil {
		slog.Error("admin gate user lookup failed", "user_id", sess.UserID, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	if user == nil || !user.IsAdmin() {
		respondError(w, http.StatusForbidden, "Forbidden")
		return false
	}

	return true
}

// resolveParent translates the request's parentId field into a *uuid.UUID
// and enforces the two-level hierarchy: the parent must exist, must be a
// main category, and must not be the category itself. The "none" sentinel
// and the empty string both mean "main category".
func (h *Categories) resolveParent(raw string, self uuid.UUID) (*uuid.UUID, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "none" {
		return nil, ""
	}

	parentID, err := uuid.Parse(raw)
	if err != nil {
		return nil, "Invalid parent category id."
	}
	if parentID == self {
		return nil, "A category cannot be its own parent."
	}

	parent, err := h.categories.FindByID(parentID)
	if err != nil {
		slog.Error("parent lookup failed", "parent_id", parentID, "error", err)
		return nil, "Internal server error"
	}
	if parent == nil {
		return nil, "Parent category not found."
	}
	if !parent.IsMain() {
		return nil, "Parent must be a main category; only two levels are supported."
	}

	return &parentID, ""
}

// slugOrGenerate returns the provided slug, or one generated from the
// name when the slug is blank.
func slugOrGenerate(s, name string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return slug.Generate(name)
	}
	return s
}
