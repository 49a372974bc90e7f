package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/domain"
)

// pollInterval is how often a pending build is re-fetched.
const pollInterval = 5 * time.Second

// BuildWatchModel follows one version's build to completion. While the
// build is queued or running it re-fetches every pollInterval; once a
// terminal status arrives no further poll is scheduled. Every poll carries
// a generation number, so results from an abandoned poll loop (after a
// rebuild, or after the job resolved differently) can never overwrite
// newer state.
type BuildWatchModel struct {
	// Dependencies
	client *api.Client
	ctx    context.Context

	// Target
	component domain.Component
	version   string
	jobID     string // May start empty; resolved from the build list

	// UI components
	spinner spinner.Model
	logs    viewport.Model

	// State
	build      *domain.BuildJob
	generation int
	loading    bool
	rebuilding bool
	err        error

	width  int
	height int
}

// NewBuildWatchModel creates a watcher for a version's build. An empty
// jobID means "the latest build of this version".
func NewBuildWatchModel(client *api.Client, ctx context.Context, component domain.Component, version, jobID string) BuildWatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(70, 14)
	vp.MouseWheelEnabled = true

	return BuildWatchModel{
		client:    client,
		ctx:       ctx,
		component: component,
		version:   version,
		jobID:     jobID,
		spinner:   sp,
		logs:      vp,
		loading:   true,
	}
}

// Init starts the first fetch.
func (m BuildWatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.fetchBuild(m.generation))
}

// Update handles messages.
func (m BuildWatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logs.Width = msg.Width - 6
		m.logs.Height = msg.Height - 10
		if m.logs.Height < 5 {
			m.logs.Height = 5
		}
		m.updateLogs()
		return m, nil

	case spinner.TickMsg:
		if m.build != nil && domain.IsTerminalBuild(m.build.Status) && !m.rebuilding {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case buildFetchedMsg:
		if msg.generation != m.generation {
			// Stale poll from a superseded loop; drop it.
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.build = msg.build
		if m.build != nil {
			m.jobID = m.build.ID
		}
		m.updateLogs()
		if m.build == nil || domain.IsTerminalBuild(m.build.Status) {
			// Terminal, or no build exists. Stop polling.
			return m, nil
		}
		return m, m.scheduleNextPoll(m.generation)

	case buildPollMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		return m, m.fetchBuild(m.generation)

	case buildWatchErrorMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		m.rebuilding = false
		m.err = msg.err
		// A failed poll of a running build keeps the loop alive; the
		// next tick may succeed. With no snapshot yet there is nothing
		// to keep polling.
		if m.build != nil && !domain.IsTerminalBuild(m.build.Status) {
			return m, m.scheduleNextPoll(m.generation)
		}
		return m, nil

	case rebuildQueuedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.rebuilding = false
		m.loading = true
		m.jobID = msg.jobID
		m.build = nil
		return m, tea.Batch(m.spinner.Tick, m.fetchBuild(m.generation))

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m BuildWatchModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc", "q":
		// Abandon the watcher. Bumping the generation orphans any poll
		// still in flight.
		m.generation++
		return m, func() tea.Msg { return CloseWatchMsg{} }

	case "r":
		// Re-run a failed (or finished) build. A new generation starts a
		// fresh poll loop against the new job.
		if m.build == nil || !domain.IsTerminalBuild(m.build.Status) || m.rebuilding {
			return m, nil
		}
		m.generation++
		m.rebuilding = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.enqueueRebuild(m.generation))

	case "j", "down":
		m.logs.LineDown(1)
		return m, nil
	case "k", "up":
		m.logs.LineUp(1)
		return m, nil
	case "G":
		m.logs.GotoBottom()
		return m, nil
	}
	return m, nil
}

// View renders the watcher.
func (m BuildWatchModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Build · %s v%s", m.component.Name, m.version)))
	b.WriteString("\n")

	switch {
	case m.rebuilding:
		b.WriteString(m.spinner.View() + " Queueing rebuild...")
	case m.loading && m.build == nil:
		b.WriteString(m.spinner.View() + " Loading build status...")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.build == nil:
		b.WriteString(dimStyle.Render("No build found for this version."))
	default:
		b.WriteString(m.renderStatusLine())
	}
	b.WriteString("\n\n")

	if m.build != nil && len(m.build.Logs) > 0 {
		b.WriteString(labelStyle.Render("Logs"))
		b.WriteString("\n")
		b.WriteString(panelBorderStyle.Width(m.logs.Width + 2).Render(m.logs.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooterHints())
	return b.String()
}

// renderStatusLine renders the status, timing, and artifact summary.
func (m BuildWatchModel) renderStatusLine() string {
	var b strings.Builder

	status := buildStatusStyle(m.build.Status).Render(domain.BuildStatusLabel(m.build.Status))
	if domain.IsPendingBuild(m.build.Status) {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(status)

	if m.build.Repo.Commit != "" {
		b.WriteString(dimStyle.Render("  commit " + domain.ShortSHA(m.build.Repo.Commit)))
	}
	if m.build.EndedAt != "" {
		b.WriteString(dimStyle.Render("  finished " + domain.FormatRelativeTime(m.build.EndedAt)))
	} else if m.build.StartedAt != "" {
		b.WriteString(dimStyle.Render("  started " + domain.FormatRelativeTime(m.build.StartedAt)))
	}

	if m.build.Status == domain.BuildSuccess && m.build.Artifacts != nil {
		b.WriteString("\n")
		b.WriteString(successStyle.Render("✓ Bundle published: "))
		b.WriteString(valueStyle.Render(m.build.Artifacts.BundleURL))
	}

	return b.String()
}

// renderFooterHints renders key hints for the current state.
func (m BuildWatchModel) renderFooterHints() string {
	hints := []string{"[esc]back"}
	if m.build != nil && domain.IsTerminalBuild(m.build.Status) {
		hints = append(hints, "[r]rebuild")
	}
	if m.build != nil && len(m.build.Logs) > 0 {
		hints = append(hints, "[j/k]scroll logs")
	}
	return HelpStyle.Render(strings.Join(hints, " "))
}

// updateLogs refreshes the log viewport, keeping it pinned to the bottom
// so a running build reads like a tail.
func (m *BuildWatchModel) updateLogs() {
	if m.build == nil || len(m.build.Logs) == 0 {
		m.logs.SetContent("")
		return
	}
	atBottom := m.logs.AtBottom()
	m.logs.SetContent(strings.Join(m.build.Logs, "\n"))
	if atBottom {
		m.logs.GotoBottom()
	}
}

// fetchBuild creates a command to fetch the watched build. With no job ID
// yet it resolves the latest build for the version first.
func (m BuildWatchModel) fetchBuild(generation int) tea.Cmd {
	client := m.client
	ctx := m.ctx
	slug := m.component.Slug
	version := m.version
	jobID := m.jobID

	return func() tea.Msg {
		if jobID == "" {
			builds, err := client.ListBuilds(ctx, slug, version)
			if err != nil {
				return buildWatchErrorMsg{generation: generation, err: err}
			}
			if len(builds) == 0 {
				return buildFetchedMsg{generation: generation, build: nil}
			}
			// Newest first per backend ordering.
			return buildFetchedMsg{generation: generation, build: &builds[0]}
		}

		build, err := client.GetBuild(ctx, jobID)
		if err != nil {
			return buildWatchErrorMsg{generation: generation, err: err}
		}
		return buildFetchedMsg{generation: generation, build: build}
	}
}

// scheduleNextPoll arms the next tick of the poll loop.
func (m BuildWatchModel) scheduleNextPoll(generation int) tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return buildPollMsg{generation: generation}
	})
}

// enqueueRebuild creates a command that queues a fresh build.
func (m BuildWatchModel) enqueueRebuild(generation int) tea.Cmd {
	client := m.client
	ctx := m.ctx
	slug := m.component.Slug
	version := m.version

	return func() tea.Msg {
		queued, err := client.EnqueueBuild(ctx, slug, version)
		if err != nil {
			return buildWatchErrorMsg{generation: generation, err: fmt.Errorf("queueing rebuild: %w", err)}
		}
		return rebuildQueuedMsg{generation: generation, jobID: queued.JobID}
	}
}

// Messages private to the build watcher.
type (
	buildFetchedMsg struct {
		generation int
		build      *domain.BuildJob
	}

	buildPollMsg struct {
		generation int
	}

	rebuildQueuedMsg struct {
		generation int
		jobID      string
	}

	buildWatchErrorMsg struct {
		generation int
		err        error
	}
)
