package theme

import "charm.land/lipgloss/v2"

var (
	ColorBlack = lipgloss.Color("#000000")
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorDim   = lipgloss.Color("#666666")
)

var (
	ColorAccent  = lipgloss.Color("#F5A524") // bell, selection, CTA
	ColorBadge   = lipgloss.Color("#E5484D") // unread count
	ColorLive    = lipgloss.Color("#16EC06") // realtime channel up
	ColorPending = lipgloss.Color("#FFDE00") // connecting
	ColorDown    = lipgloss.Color("#FF0026") // failed
	ColorAdmin   = lipgloss.Color("#7BA1BB") // administrator senders
)

var (
	ColorBgDark  = lipgloss.Color("#101518")
	ColorBgLight = lipgloss.Color("#283339")
)
