// Package adminui implements the terminal category management console:
// an HTTP client for the admin API and a bubbletea model rendering the
// two-level category tree with add/edit/delete dialogs.
package adminui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"apothek/internal/middleware"
	"apothek/internal/models"
)

// Client talks to the Apothek API. It keeps the session and CSRF cookies
// in a jar and echoes the CSRF token on every mutating request.
type Client struct {
	baseURL string
	http    *http.Client
	csrf    string
}

// NewClient creates an API client for the given server base URL.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

// apiError is returned for any non-success envelope.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// do sends a request and decodes the response envelope into out (when
// out is non-nil). Envelope errors come back as *apiError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrf != "" {
		req.Header.Set("X-CSRF-Token", c.csrf)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.refreshCSRF()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !envelope.Success {
		return &apiError{Status: resp.StatusCode, Message: envelope.Error}
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// refreshCSRF picks up the latest CSRF token from the cookie jar.
func (c *Client) refreshCSRF() {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return
	}
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == middleware.CSRFCookieName {
			c.csrf = cookie.Value
		}
	}
}

// Login authenticates and reports whether a TOTP code is still required.
// It first issues a throwaway GET so the server mints a CSRF cookie for
// the login POST.
func (c *Client) Login(ctx context.Context, email, password string) (requiresTwoFactor bool, err error) {
	// The /api/auth group mints CSRF cookies even on unauthenticated
	// requests; the 401 response is expected and ignored.
	if req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil); err == nil {
		if resp, err := c.http.Do(req); err == nil {
			resp.Body.Close()
		}
	}
	c.refreshCSRF()

	var result struct {
		RequiresTwoFactor bool `json:"requiresTwoFactor"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result); err != nil {
		return false, err
	}
	return result.RequiresTwoFactor, nil
}

// Verify2FA completes a TOTP-protected login.
func (c *Client) Verify2FA(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/2fa/verify", map[string]string{"code": code}, nil)
}

// CategoryInput is the payload for category create and update calls.
// ParentID is a UUID string or the "none" sentinel for main categories.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ParentID    string `json:"parentId"`
}

// FetchTree loads the two-level category tree.
func (c *Client) FetchTree(ctx context.Context) ([]models.Category, error) {
	var tree []models.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	if err := c.do(ctx, http.MethodPost, "/api/admin/categories", in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory updates a category.
func (c *Client) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	if err := c.do(ctx, http.MethodPut, "/api/admin/categories/"+id, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory deletes a category and its direct subcategories.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/categories/"+id, nil, nil)
}
