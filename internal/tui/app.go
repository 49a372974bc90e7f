package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/store"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenBrowse AppScreen = iota
	ScreenDetail
	ScreenLink
	ScreenDeploy
	ScreenBuildWatch
	ScreenNewComponent
	ScreenNewVersion
	ScreenProfile
	ScreenLogin
)

// AppModel is the root Bubble Tea model that manages screen transitions.
// The browse screen is home; every other screen eventually routes back to
// it or to the detail view of the component it acted on.
type AppModel struct {
	// Dependencies
	client  *api.Client
	session *store.Session
	ctx     context.Context

	// CLI flags (pre-filled values)
	componentFlag string
	pageSize      int

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error

	// The slug the detail screen returns to after link/deploy/build
	// side trips.
	activeSlug string

	// Cached model to preserve list position and filters across screen
	// transitions.
	browseModel *BrowseModel
}

// NewAppModel creates a new app model with optional CLI flag values.
// Pass an empty component slug to start on the browse screen.
func NewAppModel(client *api.Client, session *store.Session, ctx context.Context, componentFlag string, pageSize int) AppModel {
	// The browse model exists from the start so its state survives
	// every side trip.
	browse := NewBrowseModel(client, session, ctx, pageSize)

	return AppModel{
		client:        client,
		session:       session,
		ctx:           ctx,
		componentFlag: componentFlag,
		pageSize:      pageSize,
		currentScreen: ScreenBrowse,
		currentModel:  browse,
		browseModel:   &browse,
	}
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	if m.componentFlag != "" {
		// Jump straight to the requested component.
		slug := m.componentFlag
		return func() tea.Msg { return OpenDetailMsg{Slug: slug} }
	}
	return m.browseModel.Init()
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case OpenDetailMsg:
		return m.openDetail(msg.Slug)

	case CloseDetailMsg:
		return m.returnToBrowse()

	case StartLinkMsg:
		m.currentScreen = ScreenLink
		m.activeSlug = msg.Component.Slug
		linkModel := NewLinkModel(m.client, m.ctx, msg.Component)
		m.currentModel = linkModel
		return m, linkModel.Init()

	case LinkDoneMsg:
		// With an auto-created first version, jump straight to its build.
		if msg.InitialVersion != nil {
			m.currentScreen = ScreenBuildWatch
			watch := NewBuildWatchModel(m.client, m.ctx, msg.Component, msg.InitialVersion.Version, "")
			m.currentModel = watch
			return m, watch.Init()
		}
		return m.openDetail(msg.Component.Slug)

	case CancelLinkMsg:
		return m.openDetail(m.activeSlug)

	case StartDeployMsg:
		m.currentScreen = ScreenDeploy
		m.activeSlug = msg.Component.Slug
		deployModel := NewDeployModel(m.client, m.ctx, msg.Component)
		m.currentModel = deployModel
		return m, deployModel.Init()

	case DeployDoneMsg:
		m.currentScreen = ScreenBuildWatch
		watch := NewBuildWatchModel(m.client, m.ctx, msg.Component, msg.Version, msg.JobID)
		m.currentModel = watch
		return m, watch.Init()

	case CancelDeployMsg:
		return m.openDetail(m.activeSlug)

	case WatchBuildMsg:
		m.currentScreen = ScreenBuildWatch
		m.activeSlug = msg.Component.Slug
		watch := NewBuildWatchModel(m.client, m.ctx, msg.Component, msg.Version, msg.JobID)
		m.currentModel = watch
		return m, watch.Init()

	case CloseWatchMsg:
		return m.openDetail(m.activeSlug)

	case StartNewComponentMsg:
		m.currentScreen = ScreenNewComponent
		form := NewNewComponentModel(m.client, m.ctx)
		m.currentModel = form
		return m, form.Init()

	case ComponentCreatedMsg:
		return m.openDetail(msg.Component.Slug)

	case StartNewVersionMsg:
		m.currentScreen = ScreenNewVersion
		m.activeSlug = msg.Component.Slug
		form := NewNewVersionModel(m.client, m.ctx, msg.Component)
		m.currentModel = form
		return m, form.Init()

	case VersionCreatedMsg:
		if msg.JobID != "" {
			m.currentScreen = ScreenBuildWatch
			watch := NewBuildWatchModel(m.client, m.ctx, msg.Component, msg.Version.Version, msg.JobID)
			m.currentModel = watch
			return m, watch.Init()
		}
		return m.openDetail(msg.Component.Slug)

	case CancelFormMsg:
		if m.activeSlug != "" && m.currentScreen == ScreenNewVersion {
			return m.openDetail(m.activeSlug)
		}
		return m.returnToBrowse()

	case OpenProfileMsg:
		m.currentScreen = ScreenProfile
		self := false
		if u := m.session.User(); u != nil && u.ProviderID == msg.ProviderID {
			self = true
		}
		profileModel := NewProfileModel(m.client, m.ctx, msg.ProviderID, self)
		m.currentModel = profileModel
		return m, profileModel.Init()

	case CloseProfileMsg:
		return m.returnToBrowse()

	case StartLoginMsg:
		m.currentScreen = ScreenLogin
		loginModel := NewLoginModel(m.client, m.ctx)
		m.currentModel = loginModel
		return m, loginModel.Init()

	case LoggedInMsg:
		if err := m.session.SetAuth(msg.Token, msg.User); err != nil {
			m.err = fmt.Errorf("saving session: %w", err)
			return m, nil
		}
		// Requests made from here on carry the token.
		m.client = m.client.WithToken(msg.Token)
		// Rebuild browse so its client picks up the token too.
		m.browseModel = nil
		return m.returnToBrowse()

	case CancelLoginMsg:
		return m.returnToBrowse()
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep browseModel in sync when on the browse screen
		if m.currentScreen == ScreenBrowse {
			if bm, ok := m.currentModel.(BrowseModel); ok {
				m.browseModel = &bm
			}
		}
		return m, cmd
	}

	return m, nil
}

// openDetail switches to the detail view for a slug. The detail model is
// always rebuilt so side-trip results (links, deploys, new versions) show
// up without a manual refresh.
func (m AppModel) openDetail(slug string) (tea.Model, tea.Cmd) {
	if slug == "" {
		return m.returnToBrowse()
	}
	m.currentScreen = ScreenDetail
	m.activeSlug = slug
	detailModel := NewDetailModel(m.client, m.session, m.ctx, slug)
	m.currentModel = detailModel
	return m, detailModel.Init()
}

// returnToBrowse restores the cached browse screen.
func (m AppModel) returnToBrowse() (tea.Model, tea.Cmd) {
	m.currentScreen = ScreenBrowse
	if m.browseModel == nil {
		browse := NewBrowseModel(m.client, m.session, m.ctx, m.pageSize)
		m.browseModel = &browse
		m.currentModel = m.browseModel
		return m, browse.Init()
	}
	m.currentModel = m.browseModel
	// Request window size to ensure proper rendering
	return m, tea.WindowSize()
}

// View renders the current screen.
func (m AppModel) View() string {
	// Show error if present
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}

	// Delegate to current screen
	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return "Loading...\n\nPress Ctrl+C to quit"
}
