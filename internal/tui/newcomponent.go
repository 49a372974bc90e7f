package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/domain"
)

// Field indexes for the publish form.
const (
	fieldName = iota
	fieldDescription
	fieldFrameworks
	fieldTags
	fieldLicense
	fieldCount
)

// NewComponentModel is the publish-a-component form. Validation happens
// client-side before submission; the backend re-validates and assigns
// the slug.
type NewComponentModel struct {
	// Dependencies
	client *api.Client
	ctx    context.Context

	// UI components
	inputs  []textinput.Model
	spinner spinner.Model

	// State
	focused    int
	submitting bool
	fieldErr   string
	err        error
}

// NewNewComponentModel creates the publish form.
func NewNewComponentModel(client *api.Client, ctx context.Context) NewComponentModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 200
		ti.Width = 50
		inputs[i] = ti
	}
	inputs[fieldName].Placeholder = "Component name (2-50 chars)"
	inputs[fieldName].CharLimit = 50
	inputs[fieldDescription].Placeholder = "Short description"
	inputs[fieldFrameworks].Placeholder = "Frameworks, comma-separated (react, vue)"
	inputs[fieldTags].Placeholder = "Tags, comma-separated (buttons, forms)"
	inputs[fieldLicense].Placeholder = "License (MIT)"

	inputs[fieldName].Focus()

	return NewComponentModel{
		client:  client,
		ctx:     ctx,
		inputs:  inputs,
		spinner: sp,
	}
}

// Init initializes the form.
func (m NewComponentModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m NewComponentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case componentCreatedMsg:
		m.submitting = false
		return m, func() tea.Msg { return ComponentCreatedMsg{Component: msg.component} }

	case componentCreateErrorMsg:
		m.submitting = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m.updateFocused(msg)
}

// handleKeyPress processes keyboard input.
func (m NewComponentModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		return m, func() tea.Msg { return CancelFormMsg{} }

	case "tab", "down":
		return m.focusField((m.focused + 1) % fieldCount)

	case "shift+tab", "up":
		return m.focusField((m.focused + fieldCount - 1) % fieldCount)

	case "enter":
		if m.focused < fieldCount-1 {
			return m.focusField(m.focused + 1)
		}
		return m.submit()
	}

	return m.updateFocused(msg)
}

// focusField moves focus to the given field.
func (m NewComponentModel) focusField(idx int) (tea.Model, tea.Cmd) {
	m.inputs[m.focused].Blur()
	m.focused = idx
	m.inputs[m.focused].Focus()
	return m, textinput.Blink
}

// updateFocused forwards a message to the focused input.
func (m NewComponentModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

// submit validates the form and fires the create call.
func (m NewComponentModel) submit() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	name := strings.TrimSpace(m.inputs[fieldName].Value())
	if !domain.IsValidComponentName(name) {
		m.fieldErr = "Name must be 2-50 characters: letters, numbers, - and _"
		return m, nil
	}

	for _, part := range strings.Split(m.inputs[fieldTags].Value(), ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" && !domain.IsValidTag(tag) {
			m.fieldErr = "Tag " + tag + " must be 2-30 lowercase characters or hyphens"
			return m, nil
		}
	}
	tags := domain.ParseTags(m.inputs[fieldTags].Value())

	req := api.CreateComponentRequest{
		Name:        name,
		Description: strings.TrimSpace(m.inputs[fieldDescription].Value()),
		Frameworks:  domain.ParseFrameworks(m.inputs[fieldFrameworks].Value()),
		Tags:        tags,
		License:     strings.TrimSpace(m.inputs[fieldLicense].Value()),
	}

	m.fieldErr = ""
	m.err = nil
	m.submitting = true

	client := m.client
	ctx := m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		component, err := client.CreateComponent(ctx, req)
		if err != nil {
			return componentCreateErrorMsg{err: err}
		}
		return componentCreatedMsg{component: *component}
	})
}

// View renders the form.
func (m NewComponentModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Publish a Component"))
	b.WriteString("\n")

	labels := []string{"Name", "Description", "Frameworks", "Tags", "License"}
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

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(m.spinner.View() + " Publishing...")
	} else if m.fieldErr != "" {
		b.WriteString(errorStyle.Render(m.fieldErr))
	} else if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[tab]next field [enter]submit on last field [esc]cancel"))

	return b.String()
}

// Messages private to the publish form.
type (
	componentCreatedMsg struct {
		component domain.Component
	}

	componentCreateErrorMsg struct {
		err error
	}
)
