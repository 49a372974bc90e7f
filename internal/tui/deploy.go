package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/domain"
)

// DeployModel runs the one-key deploy for a linked component: resolve the
// branch tip, check whether that commit already has a version, and if not
// publish a new version for it.
//
// The check makes pressing deploy twice harmless. If the tip commit is
// already represented by a version, the screen reports up to date instead
// of creating a duplicate.
type DeployModel struct {
	// Dependencies
	client *api.Client
	ctx    context.Context

	// Target; must be linked, enforced by the caller.
	component domain.Component

	// UI components
	spinner spinner.Model

	// State
	checking   bool
	deploying  bool
	tipSHA     string
	deployedAs string // Version already covering the tip, "" if none
	err        error

	width int
}

// NewDeployModel creates the deploy screen for a linked component.
func NewDeployModel(client *api.Client, ctx context.Context, component domain.Component) DeployModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return DeployModel{
		client:    client,
		ctx:       ctx,
		component: component,
		spinner:   sp,
		checking:  true,
	}
}

// Init starts the tip-vs-versions check.
func (m DeployModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.check())
}

// Update handles messages.
func (m DeployModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.checking && !m.deploying {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case deployCheckedMsg:
		m.checking = false
		m.err = nil
		m.tipSHA = msg.tipSHA
		m.deployedAs = msg.deployedAs
		return m, nil

	case deployStartedMsg:
		m.deploying = false
		comp := m.component
		return m, func() tea.Msg {
			return DeployDoneMsg{Component: comp, Version: msg.version, JobID: msg.jobID}
		}

	case deployErrorMsg:
		m.checking = false
		m.deploying = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m DeployModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		return m, func() tea.Msg { return CancelDeployMsg{} }
	case "r":
		m.checking = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.check())
	case "enter":
		if m.checking || m.deploying || m.tipSHA == "" || m.deployedAs != "" {
			return m, nil
		}
		m.deploying = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.deploy())
	}
	return m, nil
}

// View renders the deploy screen.
func (m DeployModel) View() string {
	var b strings.Builder

	link := m.component.RepoLink
	b.WriteString(TitleStyle.Render("Deploy · " + m.component.Name))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Source      "))
	loc := link.Owner + "/" + link.Repo
	if link.Path != "" {
		loc += "/" + link.Path
	}
	b.WriteString(valueStyle.Render(loc + " @ " + link.Ref))
	b.WriteString("\n\n")

	switch {
	case m.checking:
		b.WriteString(m.spinner.View() + " Checking latest commit...")

	case m.deploying:
		b.WriteString(m.spinner.View() + " Deploying " + domain.ShortSHA(m.tipSHA) + "...")

	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[r]retry [esc]back"))

	case m.deployedAs != "":
		b.WriteString(successStyle.Render(fmt.Sprintf("✓ Up to date. Commit %s is already published as v%s.",
			domain.ShortSHA(m.tipSHA), m.deployedAs)))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[r]re-check [esc]back"))

	default:
		b.WriteString(valueStyle.Render(fmt.Sprintf("Commit %s has no published version yet.", domain.ShortSHA(m.tipSHA))))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter]deploy this commit [r]re-check [esc]back"))
	}

	return b.String()
}

// check resolves the branch tip and scans existing versions for it, as a
// single command so both sides describe the same instant.
func (m DeployModel) check() tea.Cmd {
	client := m.client
	ctx := m.ctx
	slug := m.component.Slug
	link := m.component.RepoLink

	return func() tea.Msg {
		tip, err := client.GetBranch(ctx, link.Owner, link.Repo, link.Ref)
		if err != nil {
			return deployErrorMsg{err: fmt.Errorf("resolving %s tip: %w", link.Ref, err)}
		}

		versions, err := client.ListVersions(ctx, slug)
		if err != nil {
			return deployErrorMsg{err: fmt.Errorf("listing versions: %w", err)}
		}

		deployedAs := ""
		for _, v := range versions {
			if v.CommitSHA != "" && v.CommitSHA == tip.Commit.SHA {
				deployedAs = v.Version
				break
			}
		}

		return deployCheckedMsg{tipSHA: tip.Commit.SHA, deployedAs: deployedAs}
	}
}

// deploy publishes a version for the checked tip commit. The backend picks
// the version number; the changelog records the source commit.
func (m DeployModel) deploy() tea.Cmd {
	client := m.client
	ctx := m.ctx
	slug := m.component.Slug
	sha := m.tipSHA

	return func() tea.Msg {
		result, err := client.AutoDeploy(ctx, slug, api.AutoDeployRequest{
			CommitSHA: sha,
			Changelog: "Auto-deployed from commit " + domain.ShortSHA(sha),
		})
		if err != nil {
			return deployErrorMsg{err: err}
		}
		return deployStartedMsg{version: result.Version.Version, jobID: result.JobID}
	}
}

// Messages private to the deploy screen.
type (
	deployCheckedMsg struct {
		tipSHA     string
		deployedAs string
	}

	deployStartedMsg struct {
		version string
		jobID   string
	}

	deployErrorMsg struct {
		err error
	}
)
