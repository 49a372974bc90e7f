package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/avikr/stax/internal/domain"
)

// ListVersions fetches all versions of a component, newest first.
func (c *Client) ListVersions(ctx context.Context, slug string) ([]domain.ComponentVersion, error) {
	var resp struct {
		Versions []domain.ComponentVersion `json:"versions"`
	}
	if err := c.get(ctx, fmt.Sprintf("/components/%s/versions", url.PathEscape(slug)), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Versions, nil
}

// CreateVersionRequest is the payload for publishing a new version.
type CreateVersionRequest struct {
	Version    string `json:"version"`
	Changelog  string `json:"changelog,omitempty"`
	Readme     string `json:"readme,omitempty"`
	CodeURL    string `json:"codeUrl,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// CreateVersion publishes a new version of a component. Requires auth.
// Version uniqueness is enforced by the backend, not here.
func (c *Client) CreateVersion(ctx context.Context, slug string, req CreateVersionRequest) (*domain.ComponentVersion, error) {
	var resp struct {
		Status  string                  `json:"status"`
		Version domain.ComponentVersion `json:"version"`
	}
	if err := c.post(ctx, fmt.Sprintf("/api/components/%s/versions", url.PathEscape(slug)), req, &resp); err != nil {
		return nil, err
	}
	return &resp.Version, nil
}
