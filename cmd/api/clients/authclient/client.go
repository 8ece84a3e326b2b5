package authclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"car-passion/cmd/api/httpclient"
)

// Client calls the dealership session endpoints. Session credentials live
// in the cookie jar of the underlying BaseClient.
type Client struct {
	base *httpclient.BaseClient
}

// ErrSessionAlreadyActive is returned by Login when the API answers 409.
var ErrSessionAlreadyActive = errors.New("session already active")

func New(base *httpclient.BaseClient) *Client {
	return &Client{base: base}
}

type User struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	resp, err := c.base.Request(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		if httpclient.StatusCode(err) == http.StatusConflict {
			return LoginResponse{}, fmt.Errorf("dealer-api Login: %w: %w", ErrSessionAlreadyActive, err)
		}
		return LoginResponse{}, fmt.Errorf("dealer-api Login: %w", err)
	}
	var out LoginResponse
	if err := resp.Decode(&out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.base.Request(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("dealer-api Logout: %w", err)
	}
	return nil
}

// CheckSession reports the activeSession flag of GET /auth/check-session.
func (c *Client) CheckSession(ctx context.Context) (bool, error) {
	resp, err := c.base.Request(ctx, http.MethodGet, "/auth/check-session", nil, nil)
	if err != nil {
		return false, fmt.Errorf("dealer-api CheckSession: %w", err)
	}
	var out struct {
		ActiveSession bool `json:"activeSession"`
	}
	if err := resp.Decode(&out); err != nil {
		return false, err
	}
	return out.ActiveSession, nil
}

func (c *Client) Me(ctx context.Context) (User, error) {
	resp, err := c.base.Request(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return User{}, fmt.Errorf("dealer-api Me: %w", err)
	}
	var out struct {
		User User `json:"user"`
	}
	if err := resp.Decode(&out); err != nil {
		return User{}, err
	}
	return out.User, nil
}
