package status

import (
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/tui/theme"
)

const statusDot = "●"

// Indicator renders the realtime channel state next to the bell.
type Indicator struct {
	Checked       bool
	Authenticated bool
	State         notification.ConnectionState
}

func (i Indicator) Render() string {
	if !i.Checked {
		return lipgloss.NewStyle().
			Foreground(theme.ColorBgLight).
			Render(statusDot + " checking...")
	}

	if !i.Authenticated {
		return lipgloss.NewStyle().
			Foreground(theme.ColorDown).
			Render(statusDot + " signed out")
	}

	var c = theme.ColorDim
	switch i.State {
	case notification.Connected:
		c = theme.ColorLive
	case notification.Connecting:
		c = theme.ColorPending
	case notification.Failed:
		c = theme.ColorDown
	}
	return lipgloss.NewStyle().Foreground(c).Render(statusDot + " " + i.Label())
}

func (i Indicator) Label() string {
	if i.State.Live() {
		return "live"
	}
	return i.State.String()
}
