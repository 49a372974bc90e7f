package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/browser"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/domain"
	"github.com/avikr/stax/internal/preview"
	"github.com/avikr/stax/internal/store"
)

// Layout constants for the detail split view.
const (
	metaPanelRatio = 0.38
	minMetaWidth   = 34
	maxMetaWidth   = 52
)

// DetailModel shows one component: metadata and versions on the left,
// the selected version's readme and changelog on the right. Owner-only
// actions (link, deploy, publish version, rebuild) are gated on the
// session owning the component.
type DetailModel struct {
	// Dependencies
	client  *api.Client
	session *store.Session
	ctx     context.Context

	// Data
	slug      string
	component *domain.Component
	versions  []domain.ComponentVersion

	// UI components
	spinner  spinner.Model
	viewport viewport.Model

	// State
	selectedVersion int
	loading         bool
	err             error
	toast           string

	width  int
	height int
}

// NewDetailModel creates the detail view for a component slug. Data is
// fetched in Init; the model starts in a loading state.
func NewDetailModel(client *api.Client, session *store.Session, ctx context.Context, slug string) DetailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(60, 20) // Resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	return DetailModel{
		client:   client,
		session:  session,
		ctx:      ctx,
		slug:     slug,
		spinner:  sp,
		viewport: vp,
		loading:  true,
	}
}

// Init starts the component and version fetches.
func (m DetailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.load())
}

// Update handles messages.
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case detailLoadedMsg:
		m.loading = false
		m.err = nil
		m.component = msg.component
		m.versions = msg.versions
		m.selectedVersion = 0
		m.updateViewportContent()
		return m, nil

	case detailErrorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch msg.String() {
	case "q", "esc":
		return m, func() tea.Msg { return CloseDetailMsg{} }

	case "r":
		m.loading = true
		m.toast = ""
		return m, tea.Batch(m.spinner.Tick, m.load())

	case "j", "down":
		if m.selectedVersion < len(m.versions)-1 {
			m.selectedVersion++
			m.updateViewportContent()
		}
		return m, nil

	case "k", "up":
		if m.selectedVersion > 0 {
			m.selectedVersion--
			m.updateViewportContent()
		}
		return m, nil

	case "ctrl+d":
		m.viewport.HalfViewDown()
		return m, nil

	case "ctrl+u":
		m.viewport.HalfViewUp()
		return m, nil

	case "o":
		if url := m.previewURL(); url != "" {
			if err := browser.OpenURL(url); err != nil {
				m.toast = "Failed to open browser: " + err.Error()
			} else {
				m.toast = "Opened preview"
			}
		} else {
			m.toast = "No preview available for this version"
		}
		return m, nil

	case "g":
		if m.component != nil && m.component.IsLinked() {
			url := fmt.Sprintf("https://github.com/%s/%s", m.component.RepoLink.Owner, m.component.RepoLink.Repo)
			_ = browser.OpenURL(url)
		}
		return m, nil

	case "b":
		if v := m.currentVersion(); v != nil && m.component != nil {
			comp := *m.component
			ver := v.Version
			return m, func() tea.Msg { return WatchBuildMsg{Component: comp, Version: ver} }
		}
		return m, nil

	case "l":
		if m.ownerAction() && !m.component.IsLinked() {
			comp := *m.component
			return m, func() tea.Msg { return StartLinkMsg{Component: comp} }
		}
		return m, nil

	case "d":
		if m.ownerAction() && m.component.IsLinked() {
			comp := *m.component
			return m, func() tea.Msg { return StartDeployMsg{Component: comp} }
		}
		return m, nil

	case "v":
		if m.ownerAction() {
			comp := *m.component
			return m, func() tea.Msg { return StartNewVersionMsg{Component: comp} }
		}
		return m, nil

	case "u":
		if m.component != nil {
			id := m.component.OwnerID
			return m, func() tea.Msg { return OpenProfileMsg{ProviderID: id} }
		}
		return m, nil
	}

	return m, nil
}

// ownerAction reports whether owner-only actions apply right now.
func (m DetailModel) ownerAction() bool {
	return m.component != nil && m.session.Owns(m.component)
}

// currentVersion returns the selected version, or nil when there are none.
func (m DetailModel) currentVersion() *domain.ComponentVersion {
	if m.selectedVersion < 0 || m.selectedVersion >= len(m.versions) {
		return nil
	}
	return &m.versions[m.selectedVersion]
}

// previewURL resolves the best preview URL for the selected version: the
// backend-hosted artifact when the build is ready, otherwise the author's
// external preview rewritten into its embeddable form.
func (m DetailModel) previewURL() string {
	v := m.currentVersion()
	if v == nil {
		return ""
	}
	if v.BuildState == domain.VersionBuildReady {
		return m.client.PreviewURL(m.slug, v.Version)
	}
	if v.PreviewURL != "" {
		url, err := preview.EmbedURL(v.PreviewURL)
		if err != nil {
			return v.PreviewURL
		}
		return url
	}
	return ""
}

// resizeComponents recomputes the readme viewport dimensions.
func (m *DetailModel) resizeComponents() {
	metaWidth := m.metaWidth()
	rightWidth := m.width - metaWidth - 3
	if rightWidth < 30 {
		rightWidth = 30
	}

	contentHeight := m.height - 4
	if contentHeight < 10 {
		contentHeight = 10
	}

	m.viewport.Width = rightWidth - 4
	m.viewport.Height = contentHeight - 2
	m.updateViewportContent()
}

func (m DetailModel) metaWidth() int {
	w := int(float64(m.width) * metaPanelRatio)
	if w < minMetaWidth {
		w = minMetaWidth
	}
	if w > maxMetaWidth {
		w = maxMetaWidth
	}
	return w
}

// View renders the split detail view.
func (m DetailModel) View() string {
	if m.loading {
		return m.spinner.View() + " Loading " + m.slug + "..."
	}
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			dimStyle.Render("[q]back [r]retry")
	}
	if m.component == nil {
		return dimStyle.Render("Component not found.") + "\n\n" + dimStyle.Render("[q]back")
	}

	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	metaWidth := m.metaWidth()
	rightWidth := width - metaWidth - 1
	contentHeight := height - 4
	if contentHeight < 10 {
		contentHeight = 10
	}

	left := panelBorderStyle.
		Width(metaWidth - 2).
		Height(contentHeight - 2).
		Render(m.renderMetaPanel(metaWidth - 4))

	right := panelBorderStyle.
		Width(rightWidth - 2).
		Height(contentHeight - 2).
		Render(m.viewport.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), panels, m.renderFooter())
}

// renderHeader renders the component name and the action hints.
func (m DetailModel) renderHeader() string {
	title := accentStyle.Render(m.component.Name)

	var hints []string
	hints = append(hints, "[q]back", "[j/k]versions", "[o]preview", "[b]builds", "[u]owner")
	if m.component.IsLinked() {
		hints = append(hints, "[g]repo")
	}
	if m.ownerAction() {
		if m.component.IsLinked() {
			hints = append(hints, "[d]deploy")
		} else {
			hints = append(hints, "[l]link repo")
		}
		hints = append(hints, "[v]new version")
	}

	return title + "  " + dimStyle.Render(strings.Join(hints, " "))
}

// renderFooter renders toast messages.
func (m DetailModel) renderFooter() string {
	if m.toast != "" {
		return dimStyle.Render(m.toast)
	}
	return ""
}

// renderMetaPanel renders the metadata and version list.
func (m DetailModel) renderMetaPanel(width int) string {
	var b strings.Builder
	c := m.component

	b.WriteString(labelStyle.Render("Slug: "))
	b.WriteString(valueStyle.Render(c.Slug))
	b.WriteString("\n")

	if len(c.Frameworks) > 0 {
		b.WriteString(labelStyle.Render("Frameworks: "))
		b.WriteString(valueStyle.Render(strings.Join(c.Frameworks, ", ")))
		b.WriteString("\n")
	}
	if len(c.Tags) > 0 {
		b.WriteString(labelStyle.Render("Tags: "))
		b.WriteString(valueStyle.Render(domain.Truncate(strings.Join(c.Tags, ", "), width-8)))
		b.WriteString("\n")
	}
	if c.License != "" {
		b.WriteString(labelStyle.Render("License: "))
		b.WriteString(valueStyle.Render(c.License))
		b.WriteString("\n")
	}

	if c.IsLinked() {
		b.WriteString(labelStyle.Render("Repo: "))
		loc := c.RepoLink.Owner + "/" + c.RepoLink.Repo
		if c.RepoLink.Path != "" {
			loc += "/" + c.RepoLink.Path
		}
		b.WriteString(valueStyle.Render(domain.Truncate(loc, width-8)))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Ref: "))
		ref := c.RepoLink.Ref
		if c.RepoLink.Commit != "" {
			ref += " @ " + domain.ShortSHA(c.RepoLink.Commit)
		}
		b.WriteString(valueStyle.Render(ref))
		b.WriteString("\n")
	}

	if c.Description != "" {
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(wordwrap.String(c.Description, width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Versions (%d)", len(m.versions))))
	b.WriteString("\n")

	if len(m.versions) == 0 {
		b.WriteString(dimStyle.Render("  none published yet"))
	}
	for i, v := range m.versions {
		line := fmt.Sprintf("v%s", v.Version)
		if v.BuildState != "" && v.BuildState != domain.VersionBuildNone {
			line += " " + buildStatusStyle(v.BuildState).Render(domain.VersionBuildStateLabel(v.BuildState))
		}
		if v.CommitSHA != "" {
			line += dimStyle.Render(" " + domain.ShortSHA(v.CommitSHA))
		}
		if i == m.selectedVersion {
			b.WriteString(SelectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(NormalItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// updateViewportContent fills the right panel with the selected version's
// changelog and readme.
func (m *DetailModel) updateViewportContent() {
	v := m.currentVersion()
	if v == nil {
		m.viewport.SetContent(dimStyle.Render("No versions published."))
		return
	}

	wrapWidth := m.viewport.Width - 2
	if wrapWidth < 30 {
		wrapWidth = 30
	}

	var b strings.Builder
	b.WriteString(accentStyle.Render("v" + v.Version))
	b.WriteString(dimStyle.Render("  " + domain.FormatRelativeTime(v.CreatedAt)))
	b.WriteString("\n\n")

	if v.Changelog != "" {
		b.WriteString(labelStyle.Render("Changelog"))
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(wordwrap.String(v.Changelog, wrapWidth)))
		b.WriteString("\n\n")
	}

	if v.Readme != "" {
		b.WriteString(labelStyle.Render("Readme"))
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(wordwrap.String(v.Readme, wrapWidth)))
	} else if v.Changelog == "" {
		b.WriteString(dimStyle.Render("No readme or changelog for this version."))
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

// load creates a command that fetches the component and its versions in
// one shot so the view never shows them out of step.
func (m DetailModel) load() tea.Cmd {
	client := m.client
	ctx := m.ctx
	slug := m.slug
	return func() tea.Msg {
		component, err := client.GetComponent(ctx, slug)
		if err != nil {
			return detailErrorMsg{err: fmt.Errorf("loading component: %w", err)}
		}
		versions, err := client.ListVersions(ctx, slug)
		if err != nil {
			return detailErrorMsg{err: fmt.Errorf("loading versions: %w", err)}
		}
		return detailLoadedMsg{component: component, versions: versions}
	}
}

// Messages private to the detail screen.
type (
	detailLoadedMsg struct {
		component *domain.Component
		versions  []domain.ComponentVersion
	}

	detailErrorMsg struct {
		err error
	}
)
