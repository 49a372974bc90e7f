// Package domain defines the normalized marketplace entities as the backend
// transmits them. The backend is authoritative for all of these; the client
// only holds copies that go stale until the next fetch.
package domain

// User is a marketplace account, issued by the backend after the GitHub
// OAuth handoff.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatarUrl"`
	Provider   string `json:"provider"`   // Auth provider, e.g. "github"
	ProviderID string `json:"providerId"` // Provider-side account ID; referenced by Component.OwnerID
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// RepoLink is the pinned GitHub location a component is bound to.
// A component has at most one; re-linking overwrites it.
type RepoLink struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Path   string `json:"path"`             // Folder within the repo, "" = root
	Ref    string `json:"ref"`              // Branch or tag name, default "main"
	Commit string `json:"commit,omitempty"` // SHA resolved at link time
}

// Component is a published, versionable unit in the marketplace.
// The slug is the external identifier everywhere (URLs, API paths);
// the ID is internal to the backend.
type Component struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Frameworks  []string  `json:"frameworks"`
	Tags        []string  `json:"tags"`
	License     string    `json:"license"`
	OwnerID     string    `json:"ownerId"` // References User.ProviderID
	RepoLink    *RepoLink `json:"repoLink,omitempty"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// IsLinked reports whether the component is bound to a GitHub repository.
func (c *Component) IsLinked() bool {
	return c.RepoLink != nil && c.RepoLink.Owner != "" && c.RepoLink.Repo != ""
}

// ComponentVersion is a published version of a component. Version strings
// are expected unique per component, enforced by the backend. Versions are
// ordered newest-first by creation.
type ComponentVersion struct {
	ID          string `json:"id"`
	ComponentID string `json:"componentId"`
	Version     string `json:"version"`
	Changelog   string `json:"changelog,omitempty"`
	Readme      string `json:"readme,omitempty"`
	CodeURL     string `json:"codeUrl,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	BuildState  string `json:"buildState,omitempty"`
	CommitSHA   string `json:"commitSha,omitempty"` // Set when auto-deployed
	CreatedBy   string `json:"createdBy,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// BuildRepo is the repository snapshot captured when a build job is created.
type BuildRepo struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Path   string `json:"path"`
	Ref    string `json:"ref"`
	Commit string `json:"commit,omitempty"`
}

// BuildArtifact holds the output of a successful build.
type BuildArtifact struct {
	BundleURL string `json:"bundleUrl"`
}

// BuildJob is a backend-executed build. It is created queued, moves to
// running, then to a terminal success or error state. All transitions
// happen server-side; the client only observes them via polling.
type BuildJob struct {
	ID          string         `json:"id"`
	ComponentID string         `json:"componentId"`
	Component   string         `json:"component"` // Component slug
	Version     string         `json:"version"`
	Status      string         `json:"status"`
	OwnerID     string         `json:"ownerId"`
	Repo        BuildRepo      `json:"repo"`
	Artifacts   *BuildArtifact `json:"artifacts,omitempty"`
	Logs        []string       `json:"logs,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	StartedAt   string         `json:"startedAt,omitempty"`
	EndedAt     string         `json:"endedAt,omitempty"`
}

// GitHubRepo mirrors the GitHub API repository shape, used transiently
// during the linking flow and never persisted.
type GitHubRepo struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	FullName      string          `json:"full_name"`
	Private       bool            `json:"private"`
	HTMLURL       string          `json:"html_url"`
	Description   string          `json:"description,omitempty"`
	Owner         GitHubRepoOwner `json:"owner"`
	DefaultBranch string          `json:"default_branch"`
}

// GitHubRepoOwner is the owner stanza of a GitHub repository response.
type GitHubRepoOwner struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// GitHubContent is one entry of a GitHub directory listing.
type GitHubContent struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Type        string `json:"type"` // "file" or "dir"
	URL         string `json:"url"`
	HTMLURL     string `json:"html_url"`
	Size        int64  `json:"size,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (c GitHubContent) IsDir() bool { return c.Type == "dir" }

// GitHubBranch mirrors the GitHub branch-info response. Commit.SHA is the
// branch tip, which is what gets persisted as a link's pinned commit.
type GitHubBranch struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
		URL string `json:"url"`
	} `json:"commit"`
	Protected bool `json:"protected"`
}

// Build status constants, as reported by the build status endpoint.
const (
	BuildQueued  = "queued"
	BuildRunning = "running"
	BuildSuccess = "success"
	BuildError   = "error"
)

// Version build-state constants (ComponentVersion.BuildState).
const (
	VersionBuildNone    = "none"
	VersionBuildQueued  = "queued"
	VersionBuildRunning = "running"
	VersionBuildReady   = "ready"
	VersionBuildError   = "error"
)

// IsTerminalBuild reports whether a build status is terminal. Once a
// terminal status has been observed no further polling is warranted.
func IsTerminalBuild(status string) bool {
	return status == BuildSuccess || status == BuildError
}

// IsPendingBuild reports whether a build is still queued or running.
func IsPendingBuild(status string) bool {
	return status == BuildQueued || status == BuildRunning
}
