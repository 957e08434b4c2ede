package backend

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Account is the remote account record.
type Account struct {
	ID    string `json:"$id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionToken is the opaque secret the backend hands out for a session.
// The client never inspects it.
type SessionToken struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

// CreateAccount registers a new account. The backend assigns the ID.
func (c *Client) CreateAccount(ctx context.Context, email, password, name string) (*Account, error) {
	body := map[string]string{
		"userId":   uuid.NewString(),
		"email":    email,
		"password": password,
		"name":     name,
	}
	var account Account
	if err := c.do(ctx, http.MethodPost, "/account", "", body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateEmailSession authenticates with email/password and returns the new
// session secret.
func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*SessionToken, error) {
	body := map[string]string{"email": email, "password": password}
	var token SessionToken
	if err := c.do(ctx, http.MethodPost, "/account/sessions/email", "", body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// GetAccount fetches the account the session belongs to. Guests get a
// KindMissingScope error, which callers treat as "anonymous".
func (c *Client) GetAccount(ctx context.Context, session string) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/account", session, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteSession terminates the current session.
func (c *Client) DeleteSession(ctx context.Context, session string) error {
	return c.do(ctx, http.MethodDelete, "/account/sessions/current", session, nil, nil)
}
