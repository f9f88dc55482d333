package tui

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/presenter"
	"github.com/garrettladley/fixit/internal/tui/components/status"
	"github.com/garrettladley/fixit/internal/tui/theme"
)

const (
	bellIcon      = "🔔"
	dropdownWidth = 56
)

type BellState struct {
	Indicator status.Indicator

	Open     bool
	Cursor   int
	Hydrated bool
	Records  []notification.Record
	Unread   int
	// Status is the last user-facing outcome line.
	Status string
}

// ChatState is the administrator conversation pane opened by AdminChatMsg.
type ChatState struct {
	Open    bool
	AdminID notification.ID
}

func (m *Model) BellView() string {
	bell := m.theme.TextAccent().Render(bellIcon)
	if badge := presenter.Badge(m.state.bell.Unread); badge != "" {
		bell += " " + m.theme.Badge().Render(badge)
	}
	return bell + "  " + m.state.bell.Indicator.Render()
}

func (m *Model) DropdownView() string {
	var (
		bell  = m.state.bell
		now   = m.deps.now()
		width = min(dropdownWidth, max(m.viewportWidth-4, 20))
		dim   = m.theme.Dim()
		lines []string
	)

	lines = append(lines, lipgloss.NewStyle().Bold(true).Render(presenter.Title(bell.Unread)))
	lines = append(lines, "")

	if len(bell.Records) == 0 {
		lines = append(lines, dim.Render("No new notifications"))
	}
	for i, r := range bell.Records {
		lines = append(lines, m.recordLine(r, i == bell.Cursor, now, width-4))
	}

	lines = append(lines, "")
	if presenter.ShowMarkAll(bell.Unread) {
		lines = append(lines, m.theme.TextAccent().Render("[a] Mark all read"))
	}
	if len(bell.Records) > 0 {
		lines = append(lines, m.theme.TextAccent().Render("[v] View all notifications"))
	}

	return m.theme.Panel(theme.ColorBgLight).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) recordLine(r notification.Record, selected bool, now time.Time, width int) string {
	avatar := m.theme.Avatar(r.SenderRole == notification.RoleAdmin).Render(presenter.Initial(r.SenderName))
	if avatar == "" {
		avatar = " "
	}

	marker := " "
	if !r.IsRead {
		marker = m.theme.UnreadMarker()
	}

	when := m.theme.Dim().Render(presenter.RelativeTime(r.SentAt.Time, now))
	head := lipgloss.NewStyle().Bold(!r.IsRead).Render(r.SenderName)
	body := presenter.Truncate(r.MessageContent, m.deps.TruncateLimit)

	line := marker + " " + avatar + " " + head + "  " + when + "\n    " + body
	style := lipgloss.NewStyle().Width(width)
	if selected {
		style = style.Inherit(m.theme.Selected())
	}
	return style.Render(line)
}

func (m *Model) BodyView() string {
	switch {
	case !m.state.bell.Indicator.Checked:
		return m.theme.Dim().Render("checking credentials...")
	case !m.state.bell.Indicator.Authenticated:
		return lipgloss.JoinVertical(
			lipgloss.Center,
			m.theme.TextAccent().Bold(true).Render("Not signed in"),
			"",
			m.theme.Base().Render("Run `fixit login` to receive notifications"),
		)
	case m.state.chat.Open:
		return m.ChatView()
	case m.state.bell.Status != "":
		return m.theme.Dim().Render(m.state.bell.Status)
	case !m.state.bell.Hydrated:
		return m.theme.Dim().Render("loading notifications...")
	default:
		return ""
	}
}

func (m *Model) ChatView() string {
	title := m.theme.TextAccent().Bold(true).Render("Administrator chat")
	peer := m.theme.Base().Render("Admin " + m.state.chat.AdminID.String() + " wants to talk")
	return m.theme.Panel(theme.ColorAdmin).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, "", peer))
}
