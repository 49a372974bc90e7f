package api

import (
	"context"
	"net/url"

	"github.com/avikr/stax/internal/domain"
)

// Profile bundles a user with their published components.
type Profile struct {
	User       domain.User        `json:"user"`
	Components []domain.Component `json:"components"`
	Stats      struct {
		TotalComponents int `json:"totalComponents"`
	} `json:"stats"`
}

// Me fetches the authenticated user's own profile. Requires auth.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, "/api/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UserProfile fetches a public profile by provider ID.
func (c *Client) UserProfile(ctx context.Context, providerID string) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, "/users/"+url.PathEscape(providerID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
