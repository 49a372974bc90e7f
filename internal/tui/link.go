package tui

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/domain"
)

// linkStep is the stage of the linking flow.
type linkStep int

const (
	stepRepo linkStep = iota
	stepBrowse
	stepConfirm
)

// repoItem wraps a domain.GitHubRepo for use in bubbles/list.
type repoItem struct {
	repo domain.GitHubRepo
}

func (i repoItem) FilterValue() string {
	return i.repo.FullName
}

func (i repoItem) Title() string {
	title := i.repo.FullName
	if i.repo.Private {
		title += " (private)"
	}
	return title
}

func (i repoItem) Description() string {
	if i.repo.Description == "" {
		return "default branch: " + i.repo.DefaultBranch
	}
	return domain.Truncate(i.repo.Description, 70)
}

// repoDelegate is a custom item delegate for repository items.
type repoDelegate struct{}

func (d repoDelegate) Height() int                             { return 2 }
func (d repoDelegate) Spacing() int                            { return 1 }
func (d repoDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d repoDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(repoItem)
	if !ok {
		return
	}

	str := i.Title()
	desc := i.Description()

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(desc))
	}
}

// LinkModel walks the owner through binding a component to a GitHub
// location: pick a repository, browse to a folder on a branch, confirm.
//
// Directory entries and the branch tip commit are always fetched together
// and applied together, so the confirm step can never pair a folder
// listing with a commit from a different point in time. Leaving the
// browse step discards every bit of browse state; re-entering starts
// clean at the repository list.
type LinkModel struct {
	// Dependencies
	client *api.Client
	ctx    context.Context

	// Target
	component domain.Component

	// UI components
	repoList    list.Model
	spinner     spinner.Model
	branchInput textinput.Model

	// Flow state
	step    linkStep
	loading bool
	linking bool
	err     error

	// Browse state, discarded wholesale when stepping back to the
	// repository list.
	repo         *domain.GitHubRepo
	branches     []domain.GitHubBranch
	branchIdx    int
	customBranch string // Free-form ref, overrides the fetched list
	branchEntry  bool
	dirPath      string // "" = repo root
	entries      []domain.GitHubContent
	entryIdx     int
	commitSHA    string // Branch tip, fetched atomically with entries

	// browseSeq invalidates in-flight folder fetches after the user
	// navigates again or switches branches.
	browseSeq int

	width  int
	height int
}

// NewLinkModel creates the linking flow for a component.
func NewLinkModel(client *api.Client, ctx context.Context, component domain.Component) LinkModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	l := list.New(nil, repoDelegate{}, 80, 20)
	l.Title = "Link a Repository · " + component.Name
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	bi := textinput.New()
	bi.Placeholder = "branch or tag name"
	bi.CharLimit = 100
	bi.Width = 40

	return LinkModel{
		client:      client,
		ctx:         ctx,
		component:   component,
		repoList:    l,
		spinner:     sp,
		branchInput: bi,
		step:        stepRepo,
		loading:     true,
	}
}

// Init starts the repository fetch.
func (m LinkModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.fetchRepos())
}

// Update handles messages.
func (m LinkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.repoList.SetWidth(msg.Width - 2)
		m.repoList.SetHeight(msg.Height - 4)
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.linking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case reposLoadedMsg:
		m.loading = false
		m.err = nil
		items := make([]list.Item, len(msg.repos))
		for i, r := range msg.repos {
			items[i] = repoItem{repo: r}
		}
		m.repoList.SetItems(items)
		return m, nil

	case folderLoadedMsg:
		if msg.seq != m.browseSeq {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.step = stepBrowse
		m.dirPath = msg.path
		m.entries = msg.entries
		m.entryIdx = 0
		m.commitSHA = msg.commitSHA
		if msg.branches != nil {
			m.branches = msg.branches
		}
		return m, nil

	case linkedMsg:
		m.linking = false
		return m, func() tea.Msg {
			return LinkDoneMsg{Component: msg.component, InitialVersion: msg.initialVersion}
		}

	case linkErrorMsg:
		m.loading = false
		m.linking = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.step == stepRepo {
		var cmd tea.Cmd
		m.repoList, cmd = m.repoList.Update(msg)
		return m, cmd
	}
	if m.branchEntry {
		var cmd tea.Cmd
		m.branchInput, cmd = m.branchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyPress processes keyboard input per step.
func (m LinkModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.step {
	case stepRepo:
		switch msg.String() {
		case "esc", "q":
			if m.repoList.FilterState() == list.Filtering {
				break
			}
			return m, func() tea.Msg { return CancelLinkMsg{} }
		case "enter":
			if item, ok := m.repoList.SelectedItem().(repoItem); ok {
				return m.enterRepo(item.repo)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.repoList, cmd = m.repoList.Update(msg)
		return m, cmd

	case stepBrowse:
		if m.branchEntry {
			switch msg.String() {
			case "esc":
				m.branchEntry = false
				m.branchInput.Blur()
				return m, nil
			case "enter":
				name := strings.TrimSpace(m.branchInput.Value())
				m.branchEntry = false
				m.branchInput.Blur()
				if name == "" || name == m.currentBranch() {
					return m, nil
				}
				// A typed ref starts over from the repo root, same as
				// picking a different branch from the list.
				m.customBranch = name
				return m.navigateTo("", false)
			}
			var cmd tea.Cmd
			m.branchInput, cmd = m.branchInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "esc", "q":
			// Back to the repo list, dropping all browse state.
			m.resetBrowseState()
			m.step = stepRepo
			return m, nil
		case "j", "down":
			if m.entryIdx < len(m.dirEntries())-1 {
				m.entryIdx++
			}
			return m, nil
		case "k", "up":
			if m.entryIdx > 0 {
				m.entryIdx--
			}
			return m, nil
		case "enter", "l", "right":
			dirs := m.dirEntries()
			if m.entryIdx < len(dirs) {
				return m.navigateTo(dirs[m.entryIdx].Path, false)
			}
			return m, nil
		case "backspace", "h", "left":
			if m.dirPath != "" {
				parent := path.Dir(m.dirPath)
				if parent == "." {
					parent = ""
				}
				return m.navigateTo(parent, false)
			}
			return m, nil
		case "b":
			if len(m.branches) > 1 {
				// Switching branches invalidates the current listing and
				// its commit; restart from the repo root.
				m.customBranch = ""
				m.branchIdx = (m.branchIdx + 1) % len(m.branches)
				return m.navigateTo("", false)
			}
			return m, nil
		case "B":
			m.branchEntry = true
			m.branchInput.SetValue(m.currentBranch())
			m.branchInput.CursorEnd()
			return m, m.branchInput.Focus()
		case "s":
			m.step = stepConfirm
			return m, nil
		}
		return m, nil

	case stepConfirm:
		switch msg.String() {
		case "esc", "q":
			m.step = stepBrowse
			m.err = nil
			return m, nil
		case "enter":
			if m.linking {
				return m, nil
			}
			m.linking = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.submitLink())
		}
		return m, nil
	}

	return m, nil
}

// enterRepo moves into the browse step for the chosen repository,
// starting at its root on the default branch.
func (m LinkModel) enterRepo(repo domain.GitHubRepo) (tea.Model, tea.Cmd) {
	m.repo = &repo
	m.branches = nil
	m.branchIdx = 0
	return m.navigateTo("", true)
}

// navigateTo fetches a folder listing plus the branch tip as one command.
// The branch list is loaded alongside once per repository entry.
func (m LinkModel) navigateTo(dir string, withBranches bool) (tea.Model, tea.Cmd) {
	m.browseSeq++
	m.loading = true
	m.err = nil
	seq := m.browseSeq

	client := m.client
	ctx := m.ctx
	owner := m.repo.Owner.Login
	repo := m.repo.Name
	branch := m.currentBranch()
	loadBranches := withBranches

	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		entries, err := client.GetContents(ctx, owner, repo, dir, branch)
		if err != nil {
			return linkErrorMsg{err: fmt.Errorf("listing %s: %w", path.Join(repo, dir), err)}
		}
		tip, err := client.GetBranch(ctx, owner, repo, branch)
		if err != nil {
			return linkErrorMsg{err: fmt.Errorf("resolving branch %s: %w", branch, err)}
		}

		var branches []domain.GitHubBranch
		if loadBranches {
			// Best effort; branch switching is just unavailable on failure.
			branches, _ = client.ListBranches(ctx, owner, repo)
		}

		return folderLoadedMsg{
			seq:       seq,
			path:      dir,
			entries:   entries,
			commitSHA: tip.Commit.SHA,
			branches:  branches,
		}
	})
}

// resetBrowseState drops everything accumulated past the repo step.
func (m *LinkModel) resetBrowseState() {
	m.repo = nil
	m.branches = nil
	m.branchIdx = 0
	m.customBranch = ""
	m.branchEntry = false
	m.dirPath = ""
	m.entries = nil
	m.entryIdx = 0
	m.commitSHA = ""
	m.browseSeq++ // Invalidate any fetch still in flight
	m.loading = false
	m.err = nil
}

// currentBranch returns the active branch, falling back to the repo's
// default branch before the branch list has loaded.
func (m LinkModel) currentBranch() string {
	if m.customBranch != "" {
		return m.customBranch
	}
	if len(m.branches) > 0 && m.branchIdx < len(m.branches) {
		return m.branches[m.branchIdx].Name
	}
	if m.repo != nil && m.repo.DefaultBranch != "" {
		return m.repo.DefaultBranch
	}
	return "main"
}

// dirEntries returns only the enterable directory entries.
func (m LinkModel) dirEntries() []domain.GitHubContent {
	dirs := make([]domain.GitHubContent, 0, len(m.entries))
	for _, e := range m.entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		}
	}
	return dirs
}

// View renders the current step.
func (m LinkModel) View() string {
	switch m.step {
	case stepRepo:
		view := m.repoList.View()
		if m.loading {
			view += "\n" + m.spinner.View() + " Loading repositories..."
		}
		if m.err != nil {
			view += "\n" + errorStyle.Render("Error: "+m.err.Error())
		}
		view += "\n" + dimStyle.Render("[enter]browse [esc]cancel")
		return view

	case stepBrowse:
		return m.viewBrowse()

	case stepConfirm:
		return m.viewConfirm()
	}
	return ""
}

// viewBrowse renders the folder browser with a breadcrumb header.
func (m LinkModel) viewBrowse() string {
	var b strings.Builder

	crumb := m.repo.FullName
	if m.dirPath != "" {
		crumb += "/" + m.dirPath
	}
	b.WriteString(TitleStyle.Render("Select a Folder"))
	b.WriteString("\n")
	b.WriteString(accentStyle.Render(crumb))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s @ %s", m.currentBranch(), domain.ShortSHA(m.commitSHA))))
	b.WriteString("\n\n")

	if m.branchEntry {
		b.WriteString(PromptStyle.Render("Branch: "))
		b.WriteString(m.branchInput.View())
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[enter]switch [esc]cancel"))
		return b.String()
	}

	if m.loading {
		b.WriteString(m.spinner.View() + " Loading...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("[esc]back"))
		return b.String()
	}

	dirs := m.dirEntries()
	if len(dirs) == 0 {
		b.WriteString(dimStyle.Render("No subfolders here."))
		b.WriteString("\n")
	}
	for i, e := range dirs {
		line := e.Name + "/"
		if i == m.entryIdx {
			b.WriteString(SelectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(NormalItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	fileCount := len(m.entries) - len(dirs)
	if fileCount > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d files)", fileCount)))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[enter]open folder [backspace]up [b]branch [B]type a ref [s]link this folder [esc]back"))
	return b.String()
}

// viewConfirm renders the final confirmation summary.
func (m LinkModel) viewConfirm() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Confirm Link"))
	b.WriteString("\n")

	pairs := [][2]string{
		{"Component", m.component.Name},
		{"Repository", m.repo.FullName},
		{"Folder", displayPath(m.dirPath)},
		{"Branch", m.currentBranch()},
		{"Commit", domain.ShortSHA(m.commitSHA)},
	}
	for _, p := range pairs {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", p[0])))
		b.WriteString(valueStyle.Render(p[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.linking {
		b.WriteString(m.spinner.View() + " Linking...")
	} else if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[enter]retry [esc]back"))
	} else {
		b.WriteString(HelpStyle.Render("[enter]link [esc]back"))
	}

	return b.String()
}

func displayPath(p string) string {
	if p == "" {
		return "(repository root)"
	}
	return p
}

// fetchRepos creates a command to load the user's repositories.
func (m LinkModel) fetchRepos() tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		repos, err := client.ListRepos(ctx, api.RepoListParams{PerPage: 100, Affiliation: "owner,collaborator"})
		if err != nil {
			return linkErrorMsg{err: fmt.Errorf("listing repositories: %w", err)}
		}
		return reposLoadedMsg{repos: repos}
	}
}

// submitLink creates a command that performs the link call with the
// pinned commit from the current listing.
func (m LinkModel) submitLink() tea.Cmd {
	client := m.client
	ctx := m.ctx
	slug := m.component.Slug
	req := api.LinkRequest{
		Owner:  m.repo.Owner.Login,
		Repo:   m.repo.Name,
		Path:   m.dirPath,
		Ref:    m.currentBranch(),
		Commit: m.commitSHA,
	}
	return func() tea.Msg {
		result, err := client.LinkRepo(ctx, slug, req)
		if err != nil {
			return linkErrorMsg{err: err}
		}
		return linkedMsg{component: result.Component, initialVersion: result.InitialVersion}
	}
}

// Messages private to the linking flow.
type (
	reposLoadedMsg struct {
		repos []domain.GitHubRepo
	}

	folderLoadedMsg struct {
		seq       int
		path      string
		entries   []domain.GitHubContent
		commitSHA string
		branches  []domain.GitHubBranch
	}

	linkedMsg struct {
		component      domain.Component
		initialVersion *domain.ComponentVersion
	}

	linkErrorMsg struct {
		err error
	}
)
