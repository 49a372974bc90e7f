package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var (
	// HelpOverlayStyle frames the key reference overlay.
	HelpOverlayStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		MarginTop(1)

	helpTitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)
)

// HelpModel renders the full key reference overlay for the browse screen.
// The per-screen hint lines elsewhere stay inline; this is the expanded
// view behind the ? key.
type HelpModel struct {
	help   help.Model
	keymap KeyMap
}

// NewHelpModel creates the overlay over the given key map.
func NewHelpModel(keymap KeyMap) HelpModel {
	h := help.New()
	h.ShowAll = true

	return HelpModel{
		help:   h,
		keymap: keymap,
	}
}

// View renders the overlay sized to the terminal width.
func (m HelpModel) View(width int) string {
	m.help.Width = width - 8 // Account for padding and border
	body := helpTitleStyle.Render("stax keys") + "\n\n" + m.help.View(m.keymap)
	return HelpOverlayStyle.Render(body)
}
