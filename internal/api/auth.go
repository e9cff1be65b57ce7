package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a session token and the account record.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	raw, err := c.send(ctx, http.MethodPost, "/api/auth/login", body)
	if err != nil {
		return nil, err
	}
	var result LoginResult
	if err := decodeData(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new dashboard account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*UserPayload, error) {
	raw, err := c.send(ctx, http.MethodPost, "/api/auth/register", req)
	if err != nil {
		return nil, err
	}
	var user UserPayload
	if err := decodeData(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword resets the password for an email and returns the server message.
func (c *Client) ForgotPassword(ctx context.Context, email, newPassword string) (string, error) {
	body := map[string]string{"email": email, "new_password": newPassword}
	raw, err := c.send(ctx, http.MethodPost, "/api/auth/forgot-password", body)
	if err != nil {
		return "", err
	}
	var result struct {
		Message string `json:"message"`
	}
	if err := decodeData(raw, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

// Me fetches the account behind the current session token.
func (c *Client) Me(ctx context.Context) (*UserPayload, error) {
	raw, err := c.get(ctx, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	var user UserPayload
	if err := decodeData(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
