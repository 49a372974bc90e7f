package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/avikr/stax/internal/domain"
)

// BuildEnqueued is the response to a build enqueue call.
type BuildEnqueued struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// EnqueueBuild queues a build for a component version. Requires auth.
func (c *Client) EnqueueBuild(ctx context.Context, slug, version string) (*BuildEnqueued, error) {
	path := fmt.Sprintf("/api/components/%s/versions/%s/build", url.PathEscape(slug), url.PathEscape(version))
	var resp BuildEnqueued
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBuild fetches the current state of a build job. Requires auth.
// This is the call the build watcher polls.
func (c *Client) GetBuild(ctx context.Context, buildID string) (*domain.BuildJob, error) {
	var resp struct {
		Build domain.BuildJob `json:"build"`
	}
	if err := c.get(ctx, "/api/builds/"+url.PathEscape(buildID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Build, nil
}

// ListBuilds fetches the build history of a component version, newest
// first. Requires auth.
func (c *Client) ListBuilds(ctx context.Context, slug, version string) ([]domain.BuildJob, error) {
	path := fmt.Sprintf("/api/components/%s/versions/%s/builds", url.PathEscape(slug), url.PathEscape(version))
	var resp struct {
		Builds []domain.BuildJob `json:"builds"`
	}
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Builds, nil
}
