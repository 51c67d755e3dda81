// Package remote holds the HTTP clients for the backend: variable and
// category CRUD, and the prompt optimization endpoint. The backend-synced
// library mirrors the local one conceptually but is only reconciled through
// the explicit pull/push steps in the variable package.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/promptab/promptvar/internal/errors"
	"github.com/promptab/promptvar/internal/variable"
)

// Variable is the backend's representation of a variable.
type Variable struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Value       string `json:"default_value"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Category is the backend's variable grouping, with its UI affordances.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Client talks to the backend variable API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client for the given base URL and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// List returns all remote variables.
func (c *Client) List(ctx context.Context) ([]Variable, error) {
	var out []Variable
	if err := c.do(ctx, http.MethodGet, "/api/v1/variables", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create creates a remote variable and returns the stored copy.
func (c *Client) Create(ctx context.Context, v Variable) (*Variable, error) {
	var out Variable
	if err := c.do(ctx, http.MethodPost, "/api/v1/variables", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the remote variable with the given id.
func (c *Client) Update(ctx context.Context, id string, v Variable) (*Variable, error) {
	var out Variable
	if err := c.do(ctx, http.MethodPut, "/api/v1/variables/"+id, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the remote variable with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/variables/"+id, nil, nil)
}

// ListCategories returns the remote category list.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/api/v1/variables/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory creates a remote category.
func (c *Client) CreateCategory(ctx context.Context, cat Category) (*Category, error) {
	var out Category
	if err := c.do(ctx, http.MethodPost, "/api/v1/variables/categories", cat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVariables implements variable.Remote.
func (c *Client) ListVariables(ctx context.Context) ([]variable.Variable, error) {
	remoteVars, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]variable.Variable, len(remoteVars))
	for i, rv := range remoteVars {
		out[i] = variable.Variable{
			ID:          rv.ID,
			Name:        rv.Name,
			Value:       rv.Value,
			Description: rv.Description,
			Category:    rv.Category,
			UpdatedAt:   rv.UpdatedAt,
		}
	}
	return out, nil
}

// UpsertVariable implements variable.Remote: updates the remote variable
// with the same name, or creates it.
func (c *Client) UpsertVariable(ctx context.Context, v variable.Variable) error {
	existing, err := c.List(ctx)
	if err != nil {
		return err
	}

	rv := Variable{
		Name:        v.Name,
		Value:       v.Value,
		Description: v.Description,
		Category:    v.Category,
	}

	for _, e := range existing {
		if e.Name == v.Name {
			_, err := c.Update(ctx, e.ID, rv)
			return err
		}
	}

	_, err = c.Create(ctx, rv)
	return err
}

// do issues one request and decodes the JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.baseURL == "" {
		return errors.NewInvalidRequest("api_base_url is not configured")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewInternal(err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.NewInternal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewRemote(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewRemote(
			fmt.Sprintf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet))),
			nil,
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewRemote(fmt.Sprintf("%s %s: decode response", method, path), err)
	}
	return nil
}
