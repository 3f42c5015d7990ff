package api

import (
	"context"
	"encoding/json"
	"net/http"

	"schedly/internal/models"
)

const authResource = "auth"

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userEnvelope struct {
	User  *models.User `json:"user"`
	Error string       `json:"error,omitempty"`
}

// Signup creates an account and starts a session.
func (c *Client) Signup(ctx context.Context, email, password string) (*models.User, error) {
	return c.authenticate(ctx, "signup", "/api/auth/signup", email, password, "Signup failed")
}

// Login starts a session. A rejected login carries the backend's message,
// e.g. "Invalid email or password".
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	return c.authenticate(ctx, "login", "/api/auth/login", email, password, "Login failed")
}

func (c *Client) authenticate(ctx context.Context, op, path, email, password, fallbackMsg string) (*models.User, error) {
	resp, err := c.do(ctx, authResource, op, http.MethodPost, path, credentials{Email: email, Password: password}, false)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		msg := fallbackMsg
		var env userEnvelope
		if json.Unmarshal(resp.body, &env) == nil && env.Error != "" {
			msg = env.Error
		}
		return nil, &Error{Kind: ErrAuth, Message: msg, StatusCode: resp.status}
	}

	var env userEnvelope
	if err := resp.decode(authResource, op, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// CurrentUser returns the session's user, or nil when there is no session
// or the backend cannot be reached.
func (c *Client) CurrentUser(ctx context.Context) *models.User {
	resp, err := c.do(ctx, authResource, "me", http.MethodGet, "/api/auth/me", nil, true)
	if err != nil {
		c.logger.Debug().Err(err).Msg("current user lookup failed")
		return nil
	}
	if !resp.ok() || len(resp.body) == 0 {
		return nil
	}
	var env userEnvelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		c.logger.Debug().Err(err).Msg("current user response is not JSON")
		return nil
	}
	if env.User == nil || env.User.ID == "" {
		return nil
	}
	return env.User
}

// UpdateProfile applies a partial update to the session's user.
func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	resp, err := c.do(ctx, authResource, "profile", http.MethodPut, "/api/auth/profile", update, false)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &Error{Kind: ErrProfile, Message: "Failed to update profile", StatusCode: resp.status}
	}
	var env userEnvelope
	if err := resp.decode(authResource, "profile", &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// Logout ends the session. Failures are logged and otherwise ignored.
func (c *Client) Logout(ctx context.Context) {
	resp, err := c.do(ctx, authResource, "logout", http.MethodPost, "/api/auth/logout", nil, false)
	if err != nil {
		c.logger.Warn().Err(err).Msg("logout request failed")
		return
	}
	if !resp.ok() {
		c.logger.Warn().Int("status", resp.status).Msg("logout rejected")
	}
}
