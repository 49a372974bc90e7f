package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/domain"
)

// Field indexes for the new-version form.
const (
	versionFieldVersion = iota
	versionFieldCodeURL
	versionFieldPreviewURL
	versionFieldChangelog
	versionFieldReadme
	versionFieldCount
)

// NewVersionModel is the publish-a-version form. The version string must
// be semver; URLs are optional but validated when present. On a linked
// component a build is queued right after the version is created. A build
// queue failure does not undo the version: the form still reports success
// and the owner can rebuild from the build screen.
type NewVersionModel struct {
	// Dependencies
	client *api.Client
	ctx    context.Context

	// Target
	component domain.Component

	// UI components
	inputs    []textinput.Model
	changelog textarea.Model
	readme    textarea.Model
	spinner   spinner.Model

	// State
	focused    int
	submitting bool
	fieldErr   string
	err        error
}

// NewNewVersionModel creates the version form for a component.
func NewNewVersionModel(client *api.Client, ctx context.Context, component domain.Component) NewVersionModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	inputs := make([]textinput.Model, versionFieldChangelog)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 300
		ti.Width = 50
		inputs[i] = ti
	}
	inputs[versionFieldVersion].Placeholder = "Version (1.0.0)"
	inputs[versionFieldVersion].CharLimit = 30
	inputs[versionFieldCodeURL].Placeholder = "Code URL (optional)"
	inputs[versionFieldPreviewURL].Placeholder = "Preview URL (optional)"

	ta := textarea.New()
	ta.Placeholder = "Changelog..."
	ta.CharLimit = 5000
	ta.SetHeight(5)
	ta.SetWidth(50)
	ta.ShowLineNumbers = false

	rd := textarea.New()
	rd.Placeholder = "README / usage notes (markdown)..."
	rd.CharLimit = 20000
	rd.SetHeight(5)
	rd.SetWidth(50)
	rd.ShowLineNumbers = false

	inputs[versionFieldVersion].Focus()

	return NewVersionModel{
		client:    client,
		ctx:       ctx,
		component: component,
		inputs:    inputs,
		changelog: ta,
		readme:    rd,
		spinner:   sp,
	}
}

// Init initializes the form.
func (m NewVersionModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m NewVersionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case versionCreatedMsg:
		m.submitting = false
		comp := m.component
		return m, func() tea.Msg {
			return VersionCreatedMsg{Component: comp, Version: msg.version, JobID: msg.jobID}
		}

	case versionCreateErrorMsg:
		m.submitting = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m.updateFocused(msg)
}

// handleKeyPress processes keyboard input.
func (m NewVersionModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		return m, func() tea.Msg { return CancelFormMsg{} }

	case "tab":
		return m.focusField((m.focused + 1) % versionFieldCount)

	case "shift+tab":
		return m.focusField((m.focused + versionFieldCount - 1) % versionFieldCount)

	case "enter":
		// The textareas need their newlines; submit from there with
		// ctrl+s instead.
		if m.isTextArea(m.focused) {
			return m.updateFocused(msg)
		}
		if m.focused < versionFieldCount-1 {
			return m.focusField(m.focused + 1)
		}
		return m.submit()

	case "ctrl+s":
		return m.submit()
	}

	return m.updateFocused(msg)
}

// isTextArea reports whether the field index is one of the multi-line
// fields.
func (m NewVersionModel) isTextArea(idx int) bool {
	return idx == versionFieldChangelog || idx == versionFieldReadme
}

// focusField moves focus to the given field.
func (m NewVersionModel) focusField(idx int) (tea.Model, tea.Cmd) {
	switch m.focused {
	case versionFieldChangelog:
		m.changelog.Blur()
	case versionFieldReadme:
		m.readme.Blur()
	default:
		m.inputs[m.focused].Blur()
	}
	m.focused = idx
	switch idx {
	case versionFieldChangelog:
		m.changelog.Focus()
		return m, textarea.Blink
	case versionFieldReadme:
		m.readme.Focus()
		return m, textarea.Blink
	default:
		m.inputs[idx].Focus()
		return m, textinput.Blink
	}
}

// updateFocused forwards a message to the focused input.
func (m NewVersionModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focused {
	case versionFieldChangelog:
		m.changelog, cmd = m.changelog.Update(msg)
	case versionFieldReadme:
		m.readme, cmd = m.readme.Update(msg)
	default:
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	}
	return m, cmd
}

// submit validates the form and fires the create call, plus a build when
// the component is linked.
func (m NewVersionModel) submit() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	version := strings.TrimSpace(m.inputs[versionFieldVersion].Value())
	if !domain.IsValidVersion(version) {
		m.fieldErr = domain.ErrVersionFormat
		return m, nil
	}

	codeURL := strings.TrimSpace(m.inputs[versionFieldCodeURL].Value())
	if codeURL != "" && !domain.IsValidURL(codeURL) {
		m.fieldErr = "Code URL must be a valid http(s) URL"
		return m, nil
	}
	previewURL := strings.TrimSpace(m.inputs[versionFieldPreviewURL].Value())
	if previewURL != "" && !domain.IsValidURL(previewURL) {
		m.fieldErr = "Preview URL must be a valid http(s) URL"
		return m, nil
	}

	req := api.CreateVersionRequest{
		Version:    version,
		Changelog:  strings.TrimSpace(m.changelog.Value()),
		Readme:     strings.TrimSpace(m.readme.Value()),
		CodeURL:    codeURL,
		PreviewURL: previewURL,
	}

	m.fieldErr = ""
	m.err = nil
	m.submitting = true

	client := m.client
	ctx := m.ctx
	slug := m.component.Slug
	linked := m.component.IsLinked()

	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		created, err := client.CreateVersion(ctx, slug, req)
		if err != nil {
			return versionCreateErrorMsg{err: err}
		}

		jobID := ""
		if linked {
			// The version exists either way; a failed enqueue only means
			// the owner has to trigger the build by hand.
			if queued, err := client.EnqueueBuild(ctx, slug, created.Version); err == nil {
				jobID = queued.JobID
			}
		}

		return versionCreatedMsg{version: *created, jobID: jobID}
	})
}

// View renders the form.
func (m NewVersionModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("New Version · " + m.component.Name))
	b.WriteString("\n")

	labels := []string{"Version", "Code URL", "Preview URL"}
	for i, input := range m.inputs {
		label := labels[i]
		if i == m.focused {
			b.WriteString(SelectedItemStyle.Render("> " + label))
		} else {
			b.WriteString(labelStyle.Render("  " + label))
		}
		b.WriteString("\n  ")
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	if m.focused == versionFieldChangelog {
		b.WriteString(SelectedItemStyle.Render("> Changelog"))
	} else {
		b.WriteString(labelStyle.Render("  Changelog"))
	}
	b.WriteString("\n")
	b.WriteString(m.changelog.View())
	b.WriteString("\n")

	if m.focused == versionFieldReadme {
		b.WriteString(SelectedItemStyle.Render("> README"))
	} else {
		b.WriteString(labelStyle.Render("  README"))
	}
	b.WriteString("\n")
	b.WriteString(m.readme.View())
	b.WriteString("\n\n")

	if m.submitting {
		b.WriteString(m.spinner.View() + " Publishing version...")
	} else if m.fieldErr != "" {
		b.WriteString(errorStyle.Render(m.fieldErr))
	} else if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}
	b.WriteString("\n")

	hint := "[tab]next field [ctrl+s]publish [esc]cancel"
	if m.component.IsLinked() {
		hint += "  ·  a build will be queued automatically"
	}
	b.WriteString(HelpStyle.Render(hint))

	return b.String()
}

// Messages private to the version form.
type (
	versionCreatedMsg struct {
		version domain.ComponentVersion
		jobID   string
	}

	versionCreateErrorMsg struct {
		err error
	}
)
