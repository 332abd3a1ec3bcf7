package gateway

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/streetlayer/storefront/internal/session"
)

var _ session.AuthClient = (*Client)(nil)

// Login authenticates with email and password, returning the profile payload
// and the bearer token. Auth failures are surfaced to the caller with the
// backend's message so the UI can display it.
func (c *Client) Login(ctx context.Context, email, password string) (session.User, string, error) {
	body, err := c.post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "", nil)
	if err != nil {
		return session.User{}, "", err
	}

	var envelope struct {
		User  session.User `json:"user"`
		Token string       `json:"token"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return session.User{}, "", errors.Wrap(err, "decode login response")
	}
	if envelope.Token == "" {
		return session.User{}, "", errors.New("login response missing token")
	}
	return envelope.User, envelope.Token, nil
}

// Profile fetches the full profile for the token's user.
func (c *Client) Profile(ctx context.Context, token string) (session.User, error) {
	body, err := c.get(ctx, "/auth/profile", nil, token)
	if err != nil {
		return session.User{}, err
	}

	var envelope struct {
		User session.User `json:"user"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return session.User{}, errors.Wrap(err, "decode profile response")
	}
	return envelope.User, nil
}

// UpdateProfile pushes profile changes to the backend and returns the
// updated profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, patch session.Patch) (session.User, error) {
	body, err := c.put(ctx, "/auth/profile", patch, token)
	if err != nil {
		return session.User{}, err
	}

	var envelope struct {
		User session.User `json:"user"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return session.User{}, errors.Wrap(err, "decode profile response")
	}
	return envelope.User, nil
}

// Logout notifies the backend that the token's session ended. Callers treat
// this as fire-and-forget.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.post(ctx, "/auth/logout", struct{}{}, token, nil)
	return err
}
