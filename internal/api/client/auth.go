package client

import (
	"context"
	"encoding/json"

	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var data json.RawMessage
	if err := c.postPublic(ctx, "/login", creds, &data); err != nil {
		return nil, err
	}
	return normalizeAuth(data)
}

// Register creates an account. Some backend versions return a token, some
// return nothing; an empty Token means the caller must log in separately.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var data json.RawMessage
	if err := c.postPublic(ctx, "/register", reg, &data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return &domain.AuthResult{}, nil
	}
	return normalizeAuth(data)
}
