package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns all monitored user records visible to the caller's role.
func (c *Client) ListUsers(ctx context.Context) ([]UserPayload, error) {
	raw, err := c.get(ctx, "/api/users", nil)
	if err != nil {
		return nil, err
	}
	var users []UserPayload
	if err := decodeData(raw, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one monitored user by its canonical key.
func (c *Client) GetUser(ctx context.Context, key string) (*UserPayload, error) {
	raw, err := c.get(ctx, "/api/users/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, err
	}
	var user UserPayload
	if err := decodeData(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser adds a monitored user record.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserPayload, error) {
	raw, err := c.send(ctx, http.MethodPost, "/api/users", req)
	if err != nil {
		return nil, err
	}
	var user UserPayload
	if err := decodeData(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser patches fields on an existing record.
func (c *Client) UpdateUser(ctx context.Context, key string, patch map[string]any) (*UserPayload, error) {
	raw, err := c.send(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(key), patch)
	if err != nil {
		return nil, err
	}
	var user UserPayload
	if err := decodeData(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserAnalysis returns the per-user analytics payload for a date range as raw
// JSON; shapes vary by backend version, so callers run it through normalize.
func (c *Client) UserAnalysis(ctx context.Context, key, from, to string) ([]byte, error) {
	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)
	raw, err := c.get(ctx, "/api/users/"+url.PathEscape(key)+"/analysis", params)
	if err != nil {
		return nil, err
	}
	return unwrapData(raw), nil
}
