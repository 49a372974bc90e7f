package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/avikr/stax/internal/domain"
)

// ComponentListParams filter and window the component listing.
// Zero values are omitted from the request.
type ComponentListParams struct {
	Query     string // Free-text search
	Framework string
	Tags      string // Comma-separated
	Page      int
	Limit     int
}

// ComponentList is one page of the component listing.
type ComponentList struct {
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int                `json:"total"`
	Components []domain.Component `json:"components"`
}

// ListComponents fetches a page of components with optional filters.
func (c *Client) ListComponents(ctx context.Context, params ComponentListParams) (*ComponentList, error) {
	q := url.Values{}
	if params.Query != "" {
		q.Set("q", params.Query)
	}
	if params.Framework != "" {
		q.Set("framework", params.Framework)
	}
	if params.Tags != "" {
		q.Set("tags", params.Tags)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	var list ComponentList
	if err := c.get(ctx, "/components", q, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetComponent fetches a single component by slug.
func (c *Client) GetComponent(ctx context.Context, slug string) (*domain.Component, error) {
	var resp struct {
		Component domain.Component `json:"component"`
	}
	if err := c.get(ctx, "/components/"+url.PathEscape(slug), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Component, nil
}

// CreateComponentRequest is the payload for publishing a new component.
type CreateComponentRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Frameworks  []string `json:"frameworks"`
	Tags        []string `json:"tags,omitempty"`
	License     string   `json:"license,omitempty"`
}

// CreateComponent publishes a new component. Requires auth. The returned
// component carries the backend-assigned slug used for all further routing.
func (c *Client) CreateComponent(ctx context.Context, req CreateComponentRequest) (*domain.Component, error) {
	var resp struct {
		Status    string           `json:"status"`
		Component domain.Component `json:"component"`
	}
	if err := c.post(ctx, "/api/components", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Component, nil
}

// LinkRequest pins a component to a GitHub folder. Commit is the branch tip
// SHA resolved during browsing; the backend persists the whole tuple.
type LinkRequest struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Path   string `json:"path"`
	Ref    string `json:"ref"`
	Commit string `json:"commit,omitempty"`
}

// LinkResult is the response to a link call. InitialVersion is set when the
// backend auto-created a first version (and queued its build) on linking.
type LinkResult struct {
	Component      domain.Component         `json:"component"`
	InitialVersion *domain.ComponentVersion `json:"initialVersion,omitempty"`
}

// LinkRepo sets (or overwrites) the component's repository link.
// Requires auth.
func (c *Client) LinkRepo(ctx context.Context, slug string, req LinkRequest) (*LinkResult, error) {
	var resp LinkResult
	if err := c.post(ctx, fmt.Sprintf("/api/components/%s/link", url.PathEscape(slug)), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AutoDeployRequest creates a version + build for an undeployed commit on
// the linked branch. Version is optional; the backend increments when empty.
type AutoDeployRequest struct {
	CommitSHA string `json:"commitSha"`
	Version   string `json:"version,omitempty"`
	Changelog string `json:"changelog,omitempty"`
}

// AutoDeployResult is the response to an auto-deploy call.
type AutoDeployResult struct {
	Version domain.ComponentVersion `json:"version"`
	JobID   string                  `json:"jobId"`
	Message string                  `json:"message"`
}

// AutoDeploy creates a new version for the given commit and enqueues its
// build. Requires auth; the backend rejects commits that already have a
// version, which is what makes the workflow idempotent.
func (c *Client) AutoDeploy(ctx context.Context, slug string, req AutoDeployRequest) (*AutoDeployResult, error) {
	var resp AutoDeployResult
	if err := c.post(ctx, fmt.Sprintf("/api/components/%s/deploy", url.PathEscape(slug)), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
