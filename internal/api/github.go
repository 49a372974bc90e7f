package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/avikr/stax/internal/domain"
)

// RepoListParams window the repository listing proxied from GitHub.
type RepoListParams struct {
	Page        int
	PerPage     int
	Visibility  string // all|public|private
	Affiliation string // e.g. "owner,collaborator"
}

// ListRepos fetches the authenticated user's GitHub repositories through
// the backend proxy. Requires auth.
func (c *Client) ListRepos(ctx context.Context, params RepoListParams) ([]domain.GitHubRepo, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}
	if params.Visibility != "" {
		q.Set("visibility", params.Visibility)
	}
	if params.Affiliation != "" {
		q.Set("affiliation", params.Affiliation)
	}

	var repos []domain.GitHubRepo
	if err := c.get(ctx, "/api/github/repos", q, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetContents lists a directory of a repository at the given ref through
// the backend proxy. An empty path lists the repository root. Requires auth.
func (c *Client) GetContents(ctx context.Context, owner, repo, path, ref string) ([]domain.GitHubContent, error) {
	q := url.Values{}
	q.Set("owner", owner)
	q.Set("repo", repo)
	if path != "" {
		q.Set("path", path)
	}
	if ref != "" {
		q.Set("ref", ref)
	}

	var entries []domain.GitHubContent
	if err := c.get(ctx, "/api/github/contents", q, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetBranch fetches branch info - most importantly the tip commit SHA that
// gets pinned into a repository link. Requires auth.
func (c *Client) GetBranch(ctx context.Context, owner, repo, branch string) (*domain.GitHubBranch, error) {
	q := url.Values{}
	q.Set("owner", owner)
	q.Set("repo", repo)
	if branch != "" {
		q.Set("branch", branch)
	}

	var b domain.GitHubBranch
	if err := c.get(ctx, "/api/github/branches", q, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBranches fetches the branches of a repository. Requires auth.
// The endpoint has served both an array and a single branch object (it
// falls back to the default branch when no list is available), so the
// payload is decoded either way.
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]domain.GitHubBranch, error) {
	q := url.Values{}
	q.Set("owner", owner)
	q.Set("repo", repo)

	var raw json.RawMessage
	if err := c.get(ctx, "/api/github/branches", q, &raw); err != nil {
		return nil, err
	}

	var branches []domain.GitHubBranch
	if err := json.Unmarshal(raw, &branches); err == nil {
		return branches, nil
	}
	var b domain.GitHubBranch
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decoding branches: %w", err)
	}
	return []domain.GitHubBranch{b}, nil
}
