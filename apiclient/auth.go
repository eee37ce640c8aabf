package apiclient

import (
	"context"
	"net/http"
	"spotnsort/models"
)

// Register creates an account (POST /auth/register)
func (c *Client) Register(ctx context.Context, user *models.User) (*models.User, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", user, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login checks credentials (POST /auth/login)
func (c *Client) Login(ctx context.Context, creds *models.Credentials) (*models.User, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
