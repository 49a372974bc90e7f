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

// ProfileModel shows a user's public profile: account info, component
// count, and their published components. Selecting a component opens its
// detail view.
type ProfileModel struct {
	// Dependencies
	client *api.Client
	ctx    context.Context

	// Target
	providerID string
	self       bool

	// UI components
	spinner spinner.Model

	// State
	profile  *api.Profile
	selected int
	loading  bool
	err      error

	width int
}

// NewProfileModel creates the profile view for a provider-side user ID.
// When self is set the authenticated endpoint is used instead of the
// public lookup, so the view reflects the account's own state.
func NewProfileModel(client *api.Client, ctx context.Context, providerID string, self bool) ProfileModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ProfileModel{
		client:     client,
		ctx:        ctx,
		providerID: providerID,
		self:       self,
		spinner:    sp,
		loading:    true,
	}
}

// Init starts the profile fetch.
func (m ProfileModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// Update handles messages.
func (m ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case profileLoadedMsg:
		m.loading = false
		m.err = nil
		m.profile = msg.profile
		m.selected = 0
		return m, nil

	case profileErrorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m ProfileModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		return m, func() tea.Msg { return CloseProfileMsg{} }
	case "r":
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.load())
	case "j", "down":
		if m.profile != nil && m.selected < len(m.profile.Components)-1 {
			m.selected++
		}
		return m, nil
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "enter":
		if m.profile != nil && m.selected < len(m.profile.Components) {
			slug := m.profile.Components[m.selected].Slug
			return m, func() tea.Msg { return OpenDetailMsg{Slug: slug} }
		}
		return m, nil
	}
	return m, nil
}

// View renders the profile.
func (m ProfileModel) View() string {
	if m.loading {
		return m.spinner.View() + " Loading profile..."
	}
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			dimStyle.Render("[q]back [r]retry")
	}
	if m.profile == nil {
		return dimStyle.Render("Profile not found.") + "\n\n" + dimStyle.Render("[q]back")
	}

	var b strings.Builder
	u := m.profile.User

	title := u.Name
	if title == "" {
		title = u.Username
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("@" + u.Username))
	if u.CreatedAt != "" {
		b.WriteString(dimStyle.Render("  ·  joined " + domain.FormatDate(u.CreatedAt)))
	}
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(fmt.Sprintf("Components (%d)", m.profile.Stats.TotalComponents)))
	b.WriteString("\n")

	if len(m.profile.Components) == 0 {
		b.WriteString(dimStyle.Render("  nothing published yet"))
		b.WriteString("\n")
	}
	for i, c := range m.profile.Components {
		line := c.Name
		if c.IsLinked() {
			line += " " + dimStyle.Render("[linked]")
		}
		if c.Description != "" {
			line += dimStyle.Render("  " + domain.Truncate(c.Description, 50))
		}
		if i == m.selected {
			b.WriteString(SelectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(NormalItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[enter]open [j/k]move [r]refresh [esc]back"))
	return b.String()
}

// load creates a command to fetch the profile.
func (m ProfileModel) load() tea.Cmd {
	client := m.client
	ctx := m.ctx
	providerID := m.providerID
	self := m.self
	return func() tea.Msg {
		var profile *api.Profile
		var err error
		if self {
			profile, err = client.Me(ctx)
		} else {
			profile, err = client.UserProfile(ctx, providerID)
		}
		if err != nil {
			return profileErrorMsg{err: err}
		}
		return profileLoadedMsg{profile: profile}
	}
}

// Messages private to the profile screen.
type (
	profileLoadedMsg struct {
		profile *api.Profile
	}

	profileErrorMsg struct {
		err error
	}
)
