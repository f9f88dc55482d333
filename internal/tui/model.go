package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/fixit/internal/presenter"
	"github.com/garrettladley/fixit/internal/tui/components/footer"
	"github.com/garrettladley/fixit/internal/tui/theme"
	"github.com/garrettladley/fixit/internal/xslog"
)

var _ tea.Model = (*Model)(nil)

type page uint

const (
	splashPage page = iota
	bellPage
)

const bellSound = "\a"

type state struct {
	bell BellState
	chat ChatState
}

type Model struct {
	ready          bool
	page           page
	viewportWidth  int
	viewportHeight int
	theme          theme.Theme
	state          state
	deps           Deps
}

func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = xslog.Discard()
	}
	if deps.TruncateLimit < 1 {
		deps.TruncateLimit = presenter.DefaultTruncateLimit
	}
	return Model{
		page:  splashPage,
		theme: theme.New(),
		deps:  deps,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.Tick(splashDuration, func(time.Time) tea.Msg {
			return SplashTickMsg{}
		}),
		checkAuthCmd(m.deps.Ctx, m.deps.TokenChecker),
		ListenCmd(m.deps.Bridge),
		refreshTickCmd(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
		m.ready = true

	case tea.KeyPressMsg:
		return m, m.handleKey(msg.String())

	case SplashTickMsg:
		m.page = bellPage

	case RefreshTickMsg:
		return m, refreshTickCmd()

	case AuthStatusMsg:
		m.state.bell.Indicator.Checked = true
		if msg.Err != nil {
			m.deps.Logger.Warn("credential check failed", xslog.Error(msg.Err))
		}
		m.state.bell.Indicator.Authenticated = msg.Err == nil && msg.HasToken
		if !m.state.bell.Indicator.Authenticated {
			return m, nil
		}
		return m, tea.Batch(
			hydrateCmd(m.deps.Ctx, m.deps.Fetch, m.deps.Store),
			connectCmd(m.deps.Ctx, m.deps.Transport),
		)

	case HydratedMsg:
		m.state.bell.Hydrated = true
		if msg.Err != nil {
			m.deps.Logger.Error("failed to load notifications", xslog.Error(msg.Err))
			m.state.bell.Status = "could not load notifications"
		}
		m.sync()

	case ConnectResultMsg:
		if msg.Err != nil {
			m.deps.Logger.Warn("realtime connect failed", xslog.Error(msg.Err))
			m.state.bell.Status = "realtime unavailable, retrying"
		}

	case ConnectionStateMsg:
		m.state.bell.Indicator.State = msg.State
		return m, ListenCmd(m.deps.Bridge)

	case StoreChangedMsg:
		m.sync()
		return m, ListenCmd(m.deps.Bridge)

	case IngestedMsg:
		m.sync()
		if m.deps.Sound {
			return m, tea.Batch(tea.Raw(bellSound), ListenCmd(m.deps.Bridge))
		}
		return m, ListenCmd(m.deps.Bridge)

	case AdminChatMsg:
		m.state.chat = ChatState{Open: true, AdminID: msg.Request.AdminID}
		return m, ListenCmd(m.deps.Bridge)

	case BridgeClosedMsg:

	case IntentMsg:
		m.state.bell.Open = false
		m.state.bell.Status = msg.Intent.String()
		return m, openCmd(m.deps.Open, msg.Intent.URL(m.deps.AppURL))

	case ActionResultMsg:
		if msg.Err != nil {
			m.deps.Logger.Warn("action failed", xslog.Error(msg.Err))
			m.state.bell.Status = msg.Action + " failed"
		}
	}

	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	bell := &m.state.bell

	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		if m.state.chat.Open {
			m.state.chat = ChatState{}
			return nil
		}
		bell.Open = false
		return nil
	}

	if m.page != bellPage || !bell.Indicator.Authenticated {
		return nil
	}

	if m.state.chat.Open {
		if key == "enter" {
			intent := presenter.Intent{Kind: presenter.IntentDirectChat, PeerID: m.state.chat.AdminID}
			m.state.chat = ChatState{}
			return openCmd(m.deps.Open, intent.URL(m.deps.AppURL))
		}
		return nil
	}

	switch key {
	case "b", "space":
		bell.Open = !bell.Open
		bell.Cursor = 0
		return nil
	}

	if !bell.Open {
		return nil
	}

	switch key {
	case "up", "k":
		bell.Cursor = max(bell.Cursor-1, 0)
	case "down", "j":
		bell.Cursor = min(bell.Cursor+1, max(len(bell.Records)-1, 0))
	case "enter":
		if bell.Cursor < len(bell.Records) {
			return clickCmd(m.deps.Ctx, m.deps.Presenter, bell.Records[bell.Cursor])
		}
	case "a":
		if presenter.ShowMarkAll(bell.Unread) {
			return markAllCmd(m.deps.Ctx, m.deps.Store)
		}
	case "v":
		return func() tea.Msg { return IntentMsg{Intent: presenter.ViewAll()} }
	}
	return nil
}

// sync copies the store snapshot into view state.
func (m *Model) sync() {
	if m.deps.Store == nil {
		return
	}
	bell := &m.state.bell
	bell.Records = m.deps.Store.Records()
	bell.Unread = m.deps.Store.Unread()
	if bell.Cursor >= len(bell.Records) {
		bell.Cursor = max(len(bell.Records)-1, 0)
	}
}

func (m *Model) View() tea.View {
	view := tea.NewView("")
	view.AltScreen = true

	if m.page == splashPage {
		view.BackgroundColor = theme.ColorBlack
	} else {
		view.BackgroundColor = m.theme.Background()
	}

	if !m.ready {
		return view
	}

	var content string
	switch m.page {
	case splashPage:
		content = lipgloss.Place(
			m.viewportWidth,
			m.viewportHeight,
			lipgloss.Center,
			lipgloss.Center,
			m.LogoView(),
		)
	case bellPage:
		content = m.bellPageView()
	}

	view.SetContent(content)
	return view
}

func (m *Model) bellPageView() string {
	header := lipgloss.PlaceHorizontal(m.viewportWidth, lipgloss.Right,
		lipgloss.NewStyle().PaddingRight(2).PaddingTop(1).Render(m.BellView()))

	var dropdown string
	if m.state.bell.Open {
		dropdown = lipgloss.PlaceHorizontal(m.viewportWidth, lipgloss.Right,
			lipgloss.NewStyle().PaddingRight(2).Render(m.DropdownView()))
	}

	foot := footer.New(m.theme.Dim().Render(m.keyHints()), m.viewportWidth).Render()

	used := lipgloss.Height(header) + lipgloss.Height(foot)
	if dropdown != "" {
		used += lipgloss.Height(dropdown)
	}
	body := lipgloss.Place(
		m.viewportWidth,
		max(m.viewportHeight-used, 0),
		lipgloss.Center,
		lipgloss.Center,
		m.BodyView(),
	)

	parts := []string{header}
	if dropdown != "" {
		parts = append(parts, dropdown)
	}
	parts = append(parts, body, foot)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) keyHints() string {
	switch {
	case !m.state.bell.Indicator.Authenticated:
		return "q quit"
	case m.state.chat.Open:
		return "enter open chat · esc close · q quit"
	case m.state.bell.Open:
		hints := "↑/↓ select · enter open · v view all"
		if presenter.ShowMarkAll(m.state.bell.Unread) {
			hints += " · a mark all read"
		}
		return hints + " · esc close"
	default:
		return "b notifications · q quit"
	}
}
