package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/auth"
)

// LoginModel drives the browser sign-in. The actual OAuth exchange
// happens in the browser against the backend; this screen just waits for
// the loopback callback to land.
type LoginModel struct {
	// Dependencies
	client *api.Client
	ctx    context.Context

	// UI components
	spinner spinner.Model

	// State
	waiting bool
	err     error
}

// NewLoginModel creates the sign-in screen.
func NewLoginModel(client *api.Client, ctx context.Context) LoginModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return LoginModel{
		client:  client,
		ctx:     ctx,
		spinner: sp,
	}
}

// Init initializes the login screen.
func (m LoginModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginFinishedMsg:
		m.waiting = false
		return m, func() tea.Msg {
			return LoggedInMsg{Token: msg.result.Token, User: msg.result.User}
		}

	case loginFailedMsg:
		m.waiting = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc", "q":
			return m, func() tea.Msg { return CancelLoginMsg{} }
		case "enter":
			if m.waiting {
				return m, nil
			}
			m.waiting = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.startLogin())
		}
	}

	return m, nil
}

// View renders the login screen.
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Sign In"))
	b.WriteString("\n")
	b.WriteString(PromptStyle.Render("Sign in with GitHub to publish components, link repositories, and deploy."))
	b.WriteString("\n")

	if m.waiting {
		b.WriteString(m.spinner.View() + " Waiting for the browser... complete the sign-in there.")
	} else if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter]try again [esc]continue without signing in"))
	} else {
		b.WriteString(HelpStyle.Render("[enter]open browser [esc]continue without signing in"))
	}

	return b.String()
}

// startLogin creates a command that runs the blocking browser handoff.
func (m LoginModel) startLogin() tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		result, err := auth.Login(ctx, client)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		return loginFinishedMsg{result: result}
	}
}

// Messages private to the login screen.
type (
	loginFinishedMsg struct {
		result auth.Result
	}

	loginFailedMsg struct {
		err error
	}
)
