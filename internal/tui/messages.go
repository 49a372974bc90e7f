// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import (
	"github.com/avikr/stax/internal/domain"
)

// OpenDetailMsg is emitted when the user selects a component to inspect.
type OpenDetailMsg struct {
	Slug string
}

// CloseDetailMsg is emitted when the user leaves the detail view.
type CloseDetailMsg struct{}

// StartLinkMsg is emitted when the owner starts linking a repository.
type StartLinkMsg struct {
	Component domain.Component
}

// LinkDoneMsg is emitted when the linking flow completes. InitialVersion is
// set when the backend auto-created a first version on linking.
type LinkDoneMsg struct {
	Component      domain.Component
	InitialVersion *domain.ComponentVersion
}

// CancelLinkMsg is emitted when the user backs out of the linking flow.
// All browse state (repo, branch, path) is discarded with the model.
type CancelLinkMsg struct{}

// StartDeployMsg is emitted when the owner starts an auto-deploy.
type StartDeployMsg struct {
	Component domain.Component
}

// DeployDoneMsg is emitted when an auto-deploy was accepted by the backend.
type DeployDoneMsg struct {
	Component domain.Component
	Version   string
	JobID     string
}

// CancelDeployMsg is emitted when the user backs out of the deploy screen.
type CancelDeployMsg struct{}

// WatchBuildMsg is emitted to open the build status screen for a version.
// JobID may be empty, in which case the watcher resolves the latest build.
type WatchBuildMsg struct {
	Component domain.Component
	Version   string
	JobID     string
}

// CloseWatchMsg is emitted when the user leaves the build status screen.
type CloseWatchMsg struct{}

// StartNewComponentMsg is emitted when the user starts the publish form.
type StartNewComponentMsg struct{}

// ComponentCreatedMsg is emitted when a component was published.
type ComponentCreatedMsg struct {
	Component domain.Component
}

// StartNewVersionMsg is emitted when the owner starts the new-version form.
type StartNewVersionMsg struct {
	Component domain.Component
}

// VersionCreatedMsg is emitted when a version was published. JobID is set
// when a build was queued alongside (linked components only).
type VersionCreatedMsg struct {
	Component domain.Component
	Version   domain.ComponentVersion
	JobID     string
}

// CancelFormMsg is emitted when the user backs out of a form.
type CancelFormMsg struct{}

// OpenProfileMsg is emitted to open a user's profile page.
type OpenProfileMsg struct {
	ProviderID string
}

// CloseProfileMsg is emitted when the user leaves the profile page.
type CloseProfileMsg struct{}

// StartLoginMsg is emitted when the user wants to sign in.
type StartLoginMsg struct{}

// LoggedInMsg is emitted after a completed browser sign-in.
type LoggedInMsg struct {
	Token string
	User  domain.User
}

// CancelLoginMsg is emitted when the user backs out of the login screen.
type CancelLoginMsg struct{}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}
