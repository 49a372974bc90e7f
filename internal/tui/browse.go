package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/domain"
	"github.com/avikr/stax/internal/store"
)

// frameworkFilters are the framework values the filter key cycles through.
// Empty string means no filter.
var frameworkFilters = []string{"", "react", "vue", "svelte", "angular"}

// componentItem wraps a domain.Component for use in bubbles/list.
type componentItem struct {
	component domain.Component
}

func (i componentItem) FilterValue() string {
	return i.component.Name
}

func (i componentItem) Title() string {
	return i.component.Name
}

func (i componentItem) Description() string {
	desc := i.component.Description
	if desc == "" {
		desc = "No description"
	}
	if len(i.component.Frameworks) > 0 {
		desc = strings.Join(i.component.Frameworks, ", ") + " · " + desc
	}
	return domain.Truncate(desc, 70)
}

// componentDelegate is a custom item delegate for component items.
type componentDelegate struct{}

func (d componentDelegate) Height() int                             { return 2 }
func (d componentDelegate) Spacing() int                            { return 1 }
func (d componentDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d componentDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(componentItem)
	if !ok {
		return
	}

	str := i.Title()
	if i.component.IsLinked() {
		str += " " + dimStyle.Render("[linked]")
	}
	desc := i.Description()

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(desc))
	}
}

// BrowseModel is the paginated marketplace listing. It is the home screen
// of the application.
type BrowseModel struct {
	// Dependencies
	client  *api.Client
	session *store.Session
	ctx     context.Context

	// UI components
	keymap      KeyMap
	help        HelpModel
	list        list.Model
	spinner     spinner.Model
	searchInput textinput.Model

	// Query state
	query        string
	frameworkIdx int
	page         int
	pageSize     int
	total        int

	// Fetch state. fetchSeq increments on every fetch; responses carrying
	// an older sequence are stale and dropped, so a refetch always wins
	// over whatever was in flight before it.
	fetchSeq   int
	loading    bool
	searchMode bool
	showHelp   bool
	err        error

	width  int
	height int
}

// NewBrowseModel creates the marketplace browse screen.
func NewBrowseModel(client *api.Client, session *store.Session, ctx context.Context, pageSize int) BrowseModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Search components..."
	ti.CharLimit = 100
	ti.Width = 40

	l := list.New(nil, componentDelegate{}, 80, 20)
	l.Title = "Component Marketplace"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false) // Filtering happens server-side
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	keymap := DefaultKeyMap()

	return BrowseModel{
		client:      client,
		session:     session,
		ctx:         ctx,
		keymap:      keymap,
		help:        NewHelpModel(keymap),
		list:        l,
		spinner:     sp,
		searchInput: ti,
		page:        1,
		pageSize:    pageSize,
		fetchSeq:    1,
		loading:     true,
	}
}

// Init starts the first page fetch.
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.fetch(m.fetchSeq))
}

// Update handles messages and updates the model state.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 6)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case componentsLoadedMsg:
		if msg.seq != m.fetchSeq {
			// A newer fetch superseded this one.
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.total = msg.page.Total
		items := make([]list.Item, len(msg.page.Components))
		for i, c := range msg.page.Components {
			items[i] = componentItem{component: c}
		}
		m.list.SetItems(items)
		m.list.ResetSelected()
		return m, nil

	case componentsErrorMsg:
		if msg.seq != m.fetchSeq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeyPress processes keyboard input.
func (m BrowseModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Search mode routes everything to the text input.
	if m.searchMode {
		switch msg.String() {
		case "enter":
			m.searchMode = false
			m.searchInput.Blur()
			m.query = strings.TrimSpace(m.searchInput.Value())
			m.page = 1
			cmd := m.refetch()
			return m, cmd
		case "esc":
			m.searchMode = false
			m.searchInput.Blur()
			m.searchInput.SetValue(m.query)
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, func() tea.Msg { return QuitMsg{} }

	case key.Matches(msg, m.keymap.Open):
		if item, ok := m.list.SelectedItem().(componentItem); ok {
			slug := item.component.Slug
			return m, func() tea.Msg { return OpenDetailMsg{Slug: slug} }
		}
		return m, nil

	case key.Matches(msg, m.keymap.Search):
		m.searchMode = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keymap.Framework):
		m.frameworkIdx = (m.frameworkIdx + 1) % len(frameworkFilters)
		m.page = 1
		cmd := m.refetch()
		return m, cmd

	case key.Matches(msg, m.keymap.NextPage):
		if m.page < m.totalPages() {
			m.page++
			cmd := m.refetch()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keymap.PrevPage):
		if m.page > 1 {
			m.page--
			cmd := m.refetch()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keymap.Refresh):
		cmd := m.refetch()
		return m, cmd

	case key.Matches(msg, m.keymap.New):
		if m.session.Authenticated() {
			return m, func() tea.Msg { return StartNewComponentMsg{} }
		}
		return m, func() tea.Msg { return StartLoginMsg{} }

	case key.Matches(msg, m.keymap.Profile):
		if user := m.session.User(); user != nil {
			id := user.ProviderID
			return m, func() tea.Msg { return OpenProfileMsg{ProviderID: id} }
		}
		return m, func() tea.Msg { return StartLoginMsg{} }

	case key.Matches(msg, m.keymap.Login):
		if !m.session.Authenticated() {
			return m, func() tea.Msg { return StartLoginMsg{} }
		}
		return m, nil

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the browse screen.
func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(m.list.View())
	b.WriteString("\n")

	if m.searchMode {
		b.WriteString(PromptStyle.Render("Search: ") + m.searchInput.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar())

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.width))
	}

	return b.String()
}

// renderStatusBar renders page position, active filters, and auth state.
func (m BrowseModel) renderStatusBar() string {
	var parts []string

	if m.loading {
		parts = append(parts, m.spinner.View()+" loading")
	} else if m.err != nil {
		parts = append(parts, errorStyle.Render("Error: "+m.err.Error()))
	} else {
		parts = append(parts, fmt.Sprintf("page %d/%d · %d components", m.page, m.totalPages(), m.total))
	}

	if m.query != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.query))
	}
	if fw := frameworkFilters[m.frameworkIdx]; fw != "" {
		parts = append(parts, "framework: "+fw)
	}

	if user := m.session.User(); user != nil {
		parts = append(parts, "@"+user.Username)
	} else {
		parts = append(parts, "anonymous · L to sign in")
	}

	return dimStyle.Render(strings.Join(parts, "  "))
}

// totalPages derives the page count from the server-reported total.
func (m BrowseModel) totalPages() int {
	if m.total == 0 || m.pageSize == 0 {
		return 1
	}
	pages := (m.total + m.pageSize - 1) / m.pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// refetch invalidates any fetch still in flight and starts a new one.
func (m *BrowseModel) refetch() tea.Cmd {
	m.fetchSeq++
	m.loading = true
	return m.fetch(m.fetchSeq)
}

// fetch creates a command to fetch the current page, tagged with the
// sequence number it must still match on arrival.
func (m BrowseModel) fetch(seq int) tea.Cmd {
	params := api.ComponentListParams{
		Query:     m.query,
		Framework: frameworkFilters[m.frameworkIdx],
		Page:      m.page,
		Limit:     m.pageSize,
	}
	client := m.client
	ctx := m.ctx

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		page, err := client.ListComponents(ctx, params)
		if err != nil {
			return componentsErrorMsg{seq: seq, err: err}
		}
		return componentsLoadedMsg{seq: seq, page: page}
	})
}

// Messages private to the browse screen.
type (
	componentsLoadedMsg struct {
		seq  int
		page *api.ComponentList
	}

	componentsErrorMsg struct {
		seq int
		err error
	}
)
