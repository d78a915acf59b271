package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"events-marketplace-web/internal/models"
)

// IdentityClient resolves auth tokens against the marketplace API. This
// app never manages credentials; it only asks "who is this token".
type IdentityClient struct {
	client  *http.Client
	baseURL string
}

// NewIdentityClient creates a new identity client.
func NewIdentityClient(baseURL string) *IdentityClient {
	return &IdentityClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// Resolve returns the authenticated user for a token, or
// models.ErrAuthRequired when the token is missing or rejected.
func (c *IdentityClient) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.ErrAuthRequired
	}

	url := c.baseURL + "/auth/me"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send identity request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, models.ErrAuthRequired
	default:
		return nil, fmt.Errorf("identity request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	return &user, nil
}
